package cams

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeJsonish(t *testing.T) {
	testCases := []struct {
		value    string
		expected string
	}{
		{
			value:    `({'loginStatus':'false','strError':'bad creds'})`,
			expected: `{"loginStatus":false,"strError":"bad creds"}`,
		},
		{
			value:    `({'loginStatus':'true','lastLogin':new Date('01/15/2024 10:00:00 AM')})`,
			expected: `{"loginStatus":"true","lastLogin":"01/15/2024 10:00:00 AM"}`,
		},
		{
			value:    "\n ({'loginStatus':true}) \n",
			expected: `{"loginStatus":true}`,
		},
	}

	for _, test := range testCases {
		got, err := NormalizeJsonish(test.value)
		require.NoError(t, err, test.value)
		require.Equal(t, test.expected, got)
	}

	for _, bad := range []string{"", "(", "<html>not json</html>"} {
		_, err := NormalizeJsonish(bad)
		require.ErrorIs(t, err, ErrParse, bad)
	}
}

func TestDecodeLoginResponse(t *testing.T) {
	testCases := []struct {
		value    string
		loggedIn bool
		message  string
	}{
		{value: `({'loginStatus':'false','strError':'bad creds'})`, loggedIn: false, message: "bad creds"},
		{value: `({'loginStatus':'true','strError':''})`, loggedIn: true},
		{value: `({'loginStatus':true})`, loggedIn: true},
		{value: `({'loginStatus':''})`, loggedIn: false},
		{value: `({'loginStatus':0})`, loggedIn: false},
		{value: `({'strError':'missing status'})`, loggedIn: false, message: "missing status"},
	}

	for _, test := range testCases {
		res, err := decodeLoginResponse(test.value)
		require.NoError(t, err, test.value)
		require.Equal(t, test.loggedIn, bool(res.LoginStatus), test.value)
		require.Equal(t, test.message, res.StrError, test.value)
	}
}
