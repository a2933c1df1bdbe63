// Package testutil provides test assertion helpers.
package testutil

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// Equal fails the test if got != want.
func Equal[T comparable](t *testing.T, want, got T, msgAndArgs ...any) {
	t.Helper()
	if got != want {
		t.Fatalf("%s\n  got:  %v\n  want: %v", formatMsg(msgAndArgs), got, want)
	}
}

// SliceEqual fails the test if the slices differ in length or content.
func SliceEqual[T comparable](t *testing.T, want, got []T, msgAndArgs ...any) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s\n  got:  %v (len %d)\n  want: %v (len %d)",
			formatMsg(msgAndArgs), got, len(got), want, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s: index %d\n  got:  %v\n  want: %v",
				formatMsg(msgAndArgs), i, got[i], want[i])
		}
	}
}

// NotNil fails the test if v is nil.
func NotNil[T any](t *testing.T, v *T, msgAndArgs ...any) {
	t.Helper()
	if v == nil {
		t.Fatalf("%s: expected non-nil, got nil", formatMsg(msgAndArgs))
	}
}

// Len fails the test if len(s) != want.
func Len[T any](t *testing.T, s []T, want int, msgAndArgs ...any) {
	t.Helper()
	if len(s) != want {
		t.Fatalf("%s: expected len %d, got %d", formatMsg(msgAndArgs), want, len(s))
	}
}

// True fails the test if cond is false.
func True(t *testing.T, cond bool, msgAndArgs ...any) {
	t.Helper()
	if !cond {
		t.Fatalf("%s: expected true, got false", formatMsg(msgAndArgs))
	}
}

// False fails the test if cond is true.
func False(t *testing.T, cond bool, msgAndArgs ...any) {
	t.Helper()
	if cond {
		t.Fatalf("%s: expected false, got true", formatMsg(msgAndArgs))
	}
}

// NoError fails the test if err is non-nil.
func NoError(t *testing.T, err error, msgAndArgs ...any) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", formatMsg(msgAndArgs), err)
	}
}

// Error fails the test if err is nil.
func Error(t *testing.T, err error, msgAndArgs ...any) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error, got nil", formatMsg(msgAndArgs))
	}
}

// ErrorAs fails the test if err does not match target's type in its chain.
func ErrorAs(t *testing.T, err error, target any, msgAndArgs ...any) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error, got nil", formatMsg(msgAndArgs))
	}
	if !errors.As(err, target) {
		t.Fatalf("%s: error %v (%T) does not match %T",
			formatMsg(msgAndArgs), err, err, target)
	}
}

// Contains fails the test if s does not contain substr.
func Contains(t *testing.T, s, substr string, msgAndArgs ...any) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Fatalf("%s: expected %q to contain %q", formatMsg(msgAndArgs), s, substr)
	}
}

// Fail fails the test immediately with the given message.
func Fail(t *testing.T, msgAndArgs ...any) {
	t.Helper()
	t.Fatal(formatMsg(msgAndArgs))
}

func formatMsg(msgAndArgs []any) string {
	if len(msgAndArgs) == 0 {
		return "assertion failed"
	}
	msg, ok := msgAndArgs[0].(string)
	if !ok {
		return "assertion failed"
	}
	if len(msgAndArgs) == 1 {
		return msg
	}
	return fmt.Sprintf(msg, msgAndArgs[1:]...)
}
