package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	key := NewKey("posts_images", "Holiday.JPG")
	assert.True(t, strings.HasPrefix(key, "posts_images/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, NewKey("posts_images", "Holiday.JPG"))

	assert.Equal(t, "", filepath.Ext(NewKey("p", "file.averyveryverylongext")))
}

func TestLocalSaveDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root, "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	key, err := store.Save(ctx, "posts_images", "cat.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "/media/"+key, store.URL(key))

	require.NoError(t, store.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, key), "deleting twice is not an error")
	assert.NoError(t, store.Delete(ctx, ""))
	assert.Equal(t, "", store.URL(""))
}

func TestLocalPathStaysInRoot(t *testing.T) {
	store := &Local{Root: "/srv/media"}
	assert.Equal(t, filepath.FromSlash("/srv/media/etc/passwd"), store.path("../../etc/passwd"))
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("image/png"))
	assert.False(t, IsImage("text/plain; charset=utf-8"))
	assert.False(t, IsImage("image/svg+xml"))
}
