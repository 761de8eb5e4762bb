package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParse_ClampsValues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=0&limit=500", nil)

	p := Parse(c)
	assert.Equal(t, Params{Page: 1, Limit: MaxLimit, Offset: 0}, p)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, total := Slice(items, Params{Page: 2, Limit: 2, Offset: 2})
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, int64(5), total)

	page, _ = Slice(items, Params{Page: 3, Limit: 2, Offset: 4})
	assert.Equal(t, []int{5}, page)

	page, _ = Slice(items, Params{Page: 9, Limit: 2, Offset: 16})
	assert.Empty(t, page)
}
