package dto

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func parse(query string) PaginationParams {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return ParsePagination(c)
}

func TestParsePagination(t *testing.T) {
	assert.Equal(t, PaginationParams{Page: 1, PageSize: DefaultPageSize, Offset: 0}, parse(""))
	assert.Equal(t, PaginationParams{Page: 3, PageSize: 10, Offset: 20}, parse("page=3&page_size=10"))
	assert.Equal(t, MaxPageSize, parse("page_size=5000").PageSize)
	assert.Equal(t, 1, parse("page=-4").Page)
	assert.Equal(t, DefaultPageSize, parse("page_size=abc").PageSize)
}

func TestNewPaged(t *testing.T) {
	p := PaginationParams{Page: 2, PageSize: 10, Offset: 10}
	paged := NewPaged[int](nil, p, 21)
	assert.NotNil(t, paged.Data)
	assert.Equal(t, 3, paged.Pagination.TotalPages)
	assert.Equal(t, 21, paged.Pagination.TotalItems)

	assert.Zero(t, NewPagination(p, 0).TotalPages)
}
