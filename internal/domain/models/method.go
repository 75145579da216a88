package models

import (
	"fmt"
	"strings"
)

// ReturnMethod selects the expected-return model.
type ReturnMethod int

const (
	MethodDividendDiscount ReturnMethod = iota + 1
	MethodCAPM
	MethodSimpleAverage
	MethodExponentialWeightedAverage
)

var methodNames = map[ReturnMethod]string{
	MethodDividendDiscount:           "Dividend Discount Model",
	MethodCAPM:                       "Capital Asset Pricing Model",
	MethodSimpleAverage:              "Simple Average Returns",
	MethodExponentialWeightedAverage: "Exponential Weighted Average Returns",
}

var methodKeys = map[ReturnMethod]string{
	MethodDividendDiscount:           "ddm",
	MethodCAPM:                       "capm",
	MethodSimpleAverage:              "sma",
	MethodExponentialWeightedAverage: "ewma",
}

// AllMethods lists the methods in display order.
func AllMethods() []ReturnMethod {
	return []ReturnMethod{MethodDividendDiscount, MethodCAPM, MethodSimpleAverage, MethodExponentialWeightedAverage}
}

func (m ReturnMethod) String() string {
	if n, ok := methodNames[m]; ok {
		return n
	}
	return fmt.Sprintf("ReturnMethod(%d)", int(m))
}

// Key is the short form used in configs, query strings and events.
func (m ReturnMethod) Key() string {
	return methodKeys[m]
}

func (m ReturnMethod) Valid() bool {
	_, ok := methodNames[m]
	return ok
}

// ParseReturnMethod accepts a short key or a display name, case-insensitively.
func ParseReturnMethod(s string) (ReturnMethod, error) {
	s = strings.TrimSpace(s)
	for m, key := range methodKeys {
		if strings.EqualFold(s, key) || strings.EqualFold(s, methodNames[m]) {
			return m, nil
		}
	}
	return 0, InvalidArgument("parse_return_method", "unknown return method %q", s)
}

func (m ReturnMethod) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, InvalidArgument("return_method", "invalid return method %d", int(m))
	}
	return []byte(m.Key()), nil
}

func (m *ReturnMethod) UnmarshalText(b []byte) error {
	v, err := ParseReturnMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
