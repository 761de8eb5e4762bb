package service

import (
	"context"
	"fmt"
	"strings"

	"posledger/internal/model"
	"posledger/internal/repository"
	"posledger/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
)

// --- DTOs ---

type CreateCustomerRequest struct {
	Name         string          `json:"name" binding:"required"`
	Phone        string          `json:"phone"`
	Location     string          `json:"location"`
	CreditLimit  decimal.Decimal `json:"creditLimit"`
	PaymentTerms string          `json:"paymentTerms"`
	DiscountRate decimal.Decimal `json:"discountRate"`
}

type UpdateCustomerRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=1"`
	Phone        *string          `json:"phone"`
	Location     *string          `json:"location"`
	CreditLimit  *decimal.Decimal `json:"creditLimit"`
	PaymentTerms *string          `json:"paymentTerms"`
	DiscountRate *decimal.Decimal `json:"discountRate"`
}

// CustomerView is a customer with its derived balance.
type CustomerView struct {
	model.Customer
	CurrentBalance decimal.Decimal `json:"currentBalance"`
}

func newCustomerView(c model.Customer) CustomerView {
	return CustomerView{Customer: c, CurrentBalance: c.CurrentBalance()}
}

// --- Interface ---

type CustomerService interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (CustomerView, error)
	UpdateCustomer(ctx context.Context, id int64, req UpdateCustomerRequest) (CustomerView, error)
	DeleteCustomer(ctx context.Context, id int64) error
	GetCustomer(ctx context.Context, id int64) (CustomerView, error)
	ListCustomers(ctx context.Context, search string) []CustomerView
}

type customerService struct {
	customers   repository.CustomerRepository
	txManager   storage.TransactionManager
	phoneRegion string
}

func NewCustomerService(customers repository.CustomerRepository, txManager storage.TransactionManager, phoneRegion string) CustomerService {
	if phoneRegion == "" {
		phoneRegion = "IQ"
	}
	return &customerService{customers: customers, txManager: txManager, phoneRegion: phoneRegion}
}

// --- Implementation ---

func (s *customerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (CustomerView, error) {
	if err := validateStruct(req); err != nil {
		return CustomerView{}, err
	}
	if err := validateCustomerAmounts(req.CreditLimit, req.DiscountRate); err != nil {
		return CustomerView{}, err
	}

	c := model.Customer{
		Name:         strings.TrimSpace(req.Name),
		Phone:        s.normalizePhone(req.Phone),
		Location:     req.Location,
		CreditLimit:  req.CreditLimit,
		PaymentTerms: req.PaymentTerms,
		DiscountRate: req.DiscountRate,
	}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.customers.Create(txCtx, &c)
	})
	if err != nil {
		return CustomerView{}, fmt.Errorf("failed to create customer: %w", err)
	}
	return newCustomerView(c), nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id int64, req UpdateCustomerRequest) (CustomerView, error) {
	if err := validateStruct(req); err != nil {
		return CustomerView{}, err
	}
	limit, rate := decimal.Zero, decimal.Zero
	if req.CreditLimit != nil {
		limit = *req.CreditLimit
	}
	if req.DiscountRate != nil {
		rate = *req.DiscountRate
	}
	if err := validateCustomerAmounts(limit, rate); err != nil {
		return CustomerView{}, err
	}

	var updated *model.Customer
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.customers.Update(txCtx, id, func(c *model.Customer) {
			if req.Name != nil {
				c.Name = strings.TrimSpace(*req.Name)
			}
			if req.Phone != nil {
				c.Phone = s.normalizePhone(*req.Phone)
			}
			if req.Location != nil {
				c.Location = *req.Location
			}
			if req.CreditLimit != nil {
				c.CreditLimit = *req.CreditLimit
			}
			if req.PaymentTerms != nil {
				c.PaymentTerms = *req.PaymentTerms
			}
			if req.DiscountRate != nil {
				c.DiscountRate = *req.DiscountRate
			}
		})
		return err
	})
	if err != nil {
		return CustomerView{}, fmt.Errorf("customer %d: %w", id, err)
	}
	return newCustomerView(*updated), nil
}

// DeleteCustomer refuses while the customer still owes money. A customer
// holding credit can be deleted.
func (s *customerService) DeleteCustomer(ctx context.Context, id int64) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		c, err := s.customers.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("customer %d: %w", id, err)
		}
		// Stored credit blocks deletion too.
		if !c.CurrentBalance().IsZero() {
			return fmt.Errorf("customer %d balance %s: %w", id, c.CurrentBalance().StringFixed(2), ErrOutstandingBalance)
		}
		return s.customers.Delete(txCtx, id)
	})
}

func (s *customerService) GetCustomer(ctx context.Context, id int64) (CustomerView, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return CustomerView{}, fmt.Errorf("customer %d: %w", id, err)
	}
	return newCustomerView(*c), nil
}

func (s *customerService) ListCustomers(ctx context.Context, search string) []CustomerView {
	q := strings.ToLower(strings.TrimSpace(search))
	out := make([]CustomerView, 0)
	for _, c := range s.customers.List(ctx) {
		if q != "" &&
			!strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.Phone), q) &&
			!strings.Contains(strings.ToLower(c.Location), q) {
			continue
		}
		out = append(out, newCustomerView(c))
	}
	return out
}

// normalizePhone formats parseable numbers as E.164. Anything else is kept
// as typed so an odd number never blocks saving a customer.
func (s *customerService) normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	p, err := libphonenumber.Parse(phone, s.phoneRegion)
	if err != nil || !libphonenumber.IsValidNumber(p) {
		return phone
	}
	return libphonenumber.Format(p, libphonenumber.E164)
}

func validateCustomerAmounts(creditLimit, discountRate decimal.Decimal) error {
	if creditLimit.IsNegative() {
		return newValidationError("creditLimit", "Credit limit cannot be negative")
	}
	if discountRate.IsNegative() || discountRate.GreaterThan(hundred) {
		return newValidationError("discountRate", "Discount rate must be between 0 and 100")
	}
	return nil
}
