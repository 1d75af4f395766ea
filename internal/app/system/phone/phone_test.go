package phone_test

import (
	"testing"

	"github.com/dalemusser/pastoralhub/internal/app/system/phone"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", ""},
		{"1", "(1"},
		{"11", "(11"},
		{"119", "(11) 9"},
		{"1199999", "(11) 99999"},
		{"11999998", "(11) 99999-8"},
		{"11999998888", "(11) 99999-8888"},
		{"(11) 99999-8888", "(11) 99999-8888"},
		{"1199999888877", "(11) 99999-8888"},
		{"1133334444", "(11) 33334-444"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, phone.Format(tc.in))
		})
	}
}

func TestDigits_IgnoresNonASCIIDigits(t *testing.T) {
	assert.Equal(t, "12", phone.Digits("1٣2"))
}

func TestCompose(t *testing.T) {
	assert.Equal(t, "+55 (11) 99999-8888", phone.Compose("+55", "11999998888"))
	assert.Equal(t, "+351 (21) 12345-678", phone.Compose("+351", "2112345678"))
	assert.Equal(t, "+55 (11", phone.Compose("", "11"))
	assert.Equal(t, "", phone.Compose("+1", ""))
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name, in, prefix, body string
	}{
		{"composed", "+55 (11) 99999-8888", "+55", "(11) 99999-8888"},
		{"other country", "+1 (55) 51234-5678", "+1", "(55) 51234-5678"},
		{"no plus", "(11) 99999-8888", "+55", "(11) 99999-8888"},
		{"plus without space", "+5511999998888", "+55", "+5511999998888"},
		{"empty", "", "+55", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, b := phone.Split(tc.in)
			assert.Equal(t, tc.prefix, p)
			assert.Equal(t, tc.body, b)
		})
	}
}

func TestSplitCompose_RoundTrip(t *testing.T) {
	stored := phone.Compose("+39", "06123456789")
	p, b := phone.Split(stored)
	assert.Equal(t, stored, phone.Compose(p, b))
}
