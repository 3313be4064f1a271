package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portfolio.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadPortfolioFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantTx  int
		start   string
		wantErr bool
	}{
		{
			name:    "request object",
			content: `{"transactions":[{"symbol":"AAPL","quantity":"10","buy_date":"2024-01-02","buy_price":"185.5"}],"start_date":"2024-01-03"}`,
			wantTx:  1,
			start:   "2024-01-03",
		},
		{
			name:    "bare array",
			content: "\n  [{\"symbol\":\"AAPL\",\"quantity\":\"1\",\"buy_date\":\"2024-01-02\",\"buy_price\":\"1\"},{\"symbol\":\"MSFT\",\"quantity\":\"2\",\"buy_date\":\"2024-01-02\",\"buy_price\":\"1\"}]",
			wantTx:  2,
		},
		{
			name:    "malformed",
			content: `{"transactions": [`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := readPortfolioFile(writeFile(t, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, body.Transactions, tt.wantTx)
			assert.Equal(t, tt.start, body.StartDate)

			req, err := body.ToEngine()
			require.NoError(t, err)
			assert.Len(t, req.Transactions, tt.wantTx)
		})
	}
}

func TestReadPortfolioFile_Missing(t *testing.T) {
	_, err := readPortfolioFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
