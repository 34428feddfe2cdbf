package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_SaveReadDelete(t *testing.T) {
	s := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "exports/modele.xlsx", []byte("data")))
	assert.True(t, s.Exists(ctx, "exports/modele.xlsx"))

	content, err := s.Read(ctx, "exports/modele.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	require.NoError(t, s.Delete(ctx, "exports/modele.xlsx"))
	assert.False(t, s.Exists(ctx, "exports/modele.xlsx"))
	assert.NoError(t, s.Delete(ctx, "exports/modele.xlsx"))
}

func TestLocalFileStorage_RejectsTraversal(t *testing.T) {
	s := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	err := s.Save(context.Background(), "../outside.txt", []byte("x"))
	assert.ErrorContains(t, err, "escapes base directory")
}

func TestLocalFileStorage_SaveUpload(t *testing.T) {
	base := t.TempDir()
	s := NewLocalFileStorage(base, zap.NewNop())
	ctx := context.Background()

	rel, err := s.SaveUpload(ctx, "../../Ventes Mars 2024.xlsx", strings.NewReader("workbook"), 1024)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(rel, "_Ventes_Mars_2024.xlsx"), rel)
	assert.Equal(t, ".xlsx", filepath.Ext(rel))

	content, err := os.ReadFile(s.GetFullPath(rel))
	require.NoError(t, err)
	assert.Equal(t, "workbook", string(content))

	other, err := s.SaveUpload(ctx, "Ventes Mars 2024.xlsx", strings.NewReader("workbook"), 1024)
	require.NoError(t, err)
	assert.NotEqual(t, rel, other)
}

func TestLocalFileStorage_SaveUploadTooLarge(t *testing.T) {
	s := NewLocalFileStorage(t.TempDir(), zap.NewNop())

	_, err := s.SaveUpload(context.Background(), "big.xlsx", strings.NewReader("0123456789"), 4)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "clients.xlsx", SanitizeName("clients.xlsx"))
	assert.Equal(t, "etcpasswd", SanitizeName("../etc/passwd"))
	assert.Equal(t, "Facture_n1.xls", SanitizeName("Facture n°1.xls"))
}
