package contentdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"not found", status.Error(codes.NotFound, "no document"), apperr.ErrNotFound},
		{"too large", status.Error(codes.InvalidArgument, "exceeds the maximum allowed size"), apperr.ErrValidation},
		{"unavailable", status.Error(codes.Unavailable, "connection refused"), apperr.ErrStorageUnavailable},
		{"deadline", fmt.Errorf("rpc: %w", context.DeadlineExceeded), apperr.ErrStorageUnavailable},
		{"unknown", errors.New("boom"), apperr.ErrStorageUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError("op", tc.err), tc.expected)
		})
	}
}

// TestStore_Emulator runs against a local Firestore emulator when one is configured.
func TestStore_Emulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "demo-docqa")
	require.NoError(t, err)
	defer client.Close()

	store := New(client, "documents-test", 5*time.Second)
	docID := uuid.NewString()

	_, err = store.GetText(ctx, docID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, store.PutContent(ctx, docID, "one. two.", []string{"one.", "two."}))

	text, err := store.GetText(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, "one. two.", text)

	chunks, err := store.GetChunks(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, []string{"one.", "two."}, chunks)

	require.NoError(t, store.DeleteContent(ctx, docID))
	_, err = store.GetChunks(ctx, docID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
