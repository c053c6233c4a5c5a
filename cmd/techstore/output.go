package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/jrmnl/yandex-techstore/catalog"
	"github.com/jrmnl/yandex-techstore/promo"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
)

type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that carry no code.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Message string `json:"message"`
}

type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Success writes data as a JSON envelope, or calls text for the text format.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

func (f *OutputFormatter) Error(message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "error", Error: &CLIError{Message: message}})
	}
	_, err := fmt.Fprintf(f.Writer, "Ошибка: %s\n", message)
	return err
}

func loadStore(ctx context.Context, path string) (*catalog.Store, error) {
	store := catalog.NewStore()
	if err := store.Load(ctx, catalog.FileFetcher(path)); err != nil {
		return nil, WrapExitError(ExitCommandError, "Ошибка при загрузке продуктов", err)
	}
	return store, nil
}

func loadPromos(path string) (*promo.Table, error) {
	if path == "" {
		return promo.DefaultTable(), nil
	}
	table, err := promo.LoadTable(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "Ошибка при загрузке промокодов", err)
	}
	return table, nil
}
