package errors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryClosure(t *testing.T) {
	for _, code := range AllCodes() {
		require.True(t, Contains(code), "registry should contain its own code %s", code)
	}
}

func TestDomainCoverage(t *testing.T) {
	for _, code := range AllCodes() {
		d := DomainOf(code)
		require.NotEqual(t, domainOther, d, "code %s must not map to the 'other' domain", code)
	}
}

func TestDomainOfUnknownCodePanics(t *testing.T) {
	require.Panics(t, func() {
		DomainOf("ZZZ9999")
	})
}

func TestNewRejectsUnregisteredCode(t *testing.T) {
	require.Panics(t, func() {
		New("ZZZ9999", "bogus", nil)
	})
}

func TestCompileErrorRendering(t *testing.T) {
	err := New(ExpMissingMain, "no exported main function", nil)
	require.Equal(t, "EXP0001: no exported main function", err.Error())
}

func TestCompileErrorAs(t *testing.T) {
	ce := New(KrnDuplicateName, "duplicate kernel name \"add\"", nil)
	var err error = ce
	got, ok := As(err)
	require.True(t, ok)
	require.Equal(t, KrnDuplicateName, got.Code)
}
