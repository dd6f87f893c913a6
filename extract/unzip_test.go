package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnzipToDir(t *testing.T) {
	zipData := createTestZip(t, map[string]string{
		"olist_customers_dataset.csv": "customer_id,customer_city\nc1,sao paulo\n",
		"olist_orders_dataset.csv":    "order_id,customer_id\no1,c1\n",
	})

	dir := t.TempDir()
	names, err := UnzipToDir(zipData, dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"olist_customers_dataset.csv", "olist_orders_dataset.csv"}, names)

	content, err := os.ReadFile(filepath.Join(dir, "olist_orders_dataset.csv"))
	require.NoError(t, err)
	assert.Equal(t, "order_id,customer_id\no1,c1\n", string(content))
}

func TestUnzipToDir_InvalidData(t *testing.T) {
	_, err := UnzipToDir([]byte("not a zip file"), t.TempDir())
	assert.Error(t, err)
}

func TestUnzipToDir_EmptyArchive(t *testing.T) {
	zipData := createTestZip(t, map[string]string{})
	_, err := UnzipToDir(zipData, t.TempDir())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no files")
}

func TestVerifyFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "present.csv"), []byte("a\n"), 0o644))

	missing := VerifyFiles(dir, []string{"present.csv", "absent.csv"})
	assert.Equal(t, []string{"absent.csv"}, missing)
}
