// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdir/userdir/pkg/errutil"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil error", err: nil, want: ""},
		{name: "plain error", err: errors.New("plain"), want: ""},
		{name: "oops without code", err: oops.Errorf("no code"), want: ""},
		{name: "oops with code", err: oops.Code("USER_NOT_FOUND").Errorf("missing"), want: "USER_NOT_FOUND"},
		{name: "oops with non-string code", err: oops.Code(42).Errorf("numeric"), want: ""},
		{
			name: "wrapped oops",
			err:  fmt.Errorf("outer: %w", oops.Code("VALIDATION_FAILED").Errorf("inner")),
			want: "VALIDATION_FAILED",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errutil.Code(tt.err))
		})
	}
}

func TestLogError_OopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("USER_NOT_FOUND").With("login", "ghost").Errorf("user not found")
	errutil.LogError(logger, "lookup failed", err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "lookup failed", entry["msg"])
	assert.Equal(t, "user not found", entry["error"])
	assert.Equal(t, "USER_NOT_FOUND", entry["code"])

	ctx, ok := entry["context"].(map[string]any)
	require.True(t, ok, "expected context object, got %T", entry["context"])
	assert.Equal(t, "ghost", ctx["login"])
}

func TestLogError_PlainError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "operation failed", errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "operation failed", entry["msg"])
	assert.Equal(t, "boom", entry["error"])
	assert.NotContains(t, entry, "code")
}
