package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsDate(t *testing.T) {
	matching := []string{
		"01/15/2024",
		"1/5/24",
		"12-31-1999",
		"2024-01-15",
		"2024-1-5",
		"3/4/2021 9:30 AM",
	}
	for _, text := range matching {
		require.True(t, IsDate(text), text)
	}

	notMatching := []string{
		"",
		"Jan 15, 2024",
		"on 01/15/2024",
		" 01/15/2024",
		"Hon. Jane Smith",
		"12345",
		"1/2",
		"/01/15/2024",
	}
	for _, text := range notMatching {
		require.False(t, IsDate(text), text)
	}
}

func TestIsTime(t *testing.T) {
	require.True(t, IsTime("9:30"))
	require.True(t, IsTime("09:30 AM"))
	require.True(t, IsTime("12:00"))
	require.False(t, IsTime("930"))
	require.False(t, IsTime("at 9:30"))
	require.False(t, IsTime("9:3"))
}

func TestIsJudge(t *testing.T) {
	require.True(t, IsJudge("Hon. Jane Smith"))
	require.True(t, IsJudge("JUDGE DREDD"))
	require.True(t, IsJudge("Assigned judge: none"))
	require.False(t, IsJudge("Honorable Jane Smith"))
	require.False(t, IsJudge("Jane Smith"))
}

func TestIsFirm(t *testing.T) {
	for _, text := range []string{
		"Smith Law Group",
		"Attorney General",
		"John Doe, Esq.",
		"Acme LLC",
		"Doe PLLC",
		"Roe PC",
		"Smith & Wesson",
	} {
		require.True(t, IsFirm(text), text)
	}
	require.False(t, IsFirm("Supreme Court"))
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		text     string
		expected Kind
	}{
		{text: "01/15/2024", expected: KindDate},
		{text: "Hon. Jane Smith", expected: KindJudge},
		// judge wins over firm
		{text: "Hon. Roe & Doe", expected: KindJudge},
		{text: "Doe & Roe LLP", expected: KindFirm},
		{text: "9:30 AM", expected: KindTime},
		// firm wins over time ("pc" inside "9:30 pc")
		{text: "9:30 pc", expected: KindFirm},
		{text: "Motion", expected: KindNone},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, Classify(test.text), test.text)
	}
}
