package pagination

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestNumPages(t *testing.T) {
	assert.Equal(t, 1, NumPages(0, 10))
	assert.Equal(t, 1, NumPages(10, 10))
	assert.Equal(t, 2, NumPages(11, 10))
	assert.Equal(t, 3, NumPages(21, 10))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		raw      string
		numPages int
		want     int
	}{
		{"", 3, 1},
		{"abc", 3, 1},
		{"2", 3, 2},
		{"3", 3, 3},
		{"4", 3, 3},
		{"0", 3, 3},
		{"-1", 3, 3},
		{"1", 1, 1},
		{"99", 1, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Resolve(tt.raw, tt.numPages), "raw=%q", tt.raw)
	}
}

func TestPageNavigation(t *testing.T) {
	p := &Page[int]{Items: []int{11, 12, 13}, Number: 2, NumPages: 2, PerPage: 10, Total: 13}

	assert.True(t, p.HasPrevious())
	assert.False(t, p.HasNext())
	assert.True(t, p.HasOtherPages())
	assert.Equal(t, 1, p.PreviousNumber())
	assert.Equal(t, int64(11), p.StartIndex())
	assert.Equal(t, int64(13), p.EndIndex())

	empty := &Page[int]{Items: []int{}, Number: 1, NumPages: 1, PerPage: 10}
	assert.False(t, empty.HasOtherPages())
	assert.Equal(t, int64(0), empty.StartIndex())
}

type row struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestPaginateQuery(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&row{}))
	for i := 1; i <= 23; i++ {
		require.NoError(t, db.Create(&row{Name: fmt.Sprintf("row-%02d", i)}).Error)
	}

	query := func() *gorm.DB { return db.Model(&row{}).Order("id") }

	page, err := Paginate[row](query(), query(), "3", 10)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Number)
	assert.Equal(t, 3, page.NumPages)
	assert.Equal(t, int64(23), page.Total)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "row-21", page.Items[0].Name)

	page, err = Paginate[row](query(), query(), "100", 10)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Number)

	page, err = Paginate[row](query().Where("id > ?", 100), query().Where("id > ?", 100), "2", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Empty(t, page.Items)
}
