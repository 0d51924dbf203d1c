package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/cosmosdb/errors"
)

type endpoint struct {
	BaseAddress string `mapstructure:"base_address" validate:"required,url"`
	Key         string `mapstructure:"master_key" validate:"required,base64"`
	Version     string `mapstructure:"api_version" validate:"omitempty,datetime=2006-01-02"`
	RetryCount  int    `validate:"min=0,max=5"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(endpoint{
		BaseAddress: "https://acct.documents.azure.com:443/",
		Key:         "c2VjcmV0",
		Version:     "2018-12-31",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_FieldNamesFromMapstructure(t *testing.T) {
	err := Validate(endpoint{Key: "not base64!", Version: "31-12-2018", RetryCount: 9})
	if err == nil {
		t.Fatal("expected validation error")
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}

	for _, want := range []string{
		"base_address: is required",
		"master_key: must be base64 encoded",
		"api_version: must match the layout 2006-01-02",
		"retry_count: must be at most 5",
	} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("message %q missing %q", appErr.Message, want)
		}
	}

	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 4 {
		t.Errorf("expected 4 field errors, got %#v", appErr.Details["fields"])
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"BaseAddress": "base_address",
		"ID":          "i_d",
		"name":        "name",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
