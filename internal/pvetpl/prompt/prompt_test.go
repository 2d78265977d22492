package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsk(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name     string
		input    string
		fallback string
		want     string
	}{
		{
			name:     "value entered",
			input:    "vmbr1\n",
			fallback: "vmbr0",
			want:     "vmbr1",
		},
		{
			name:     "empty returns fallback",
			input:    "\n",
			fallback: "vmbr0",
			want:     "vmbr0",
		},
		{
			name:     "whitespace trimmed",
			input:    "  local-lvm  \n",
			fallback: "",
			want:     "local-lvm",
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			p := NewWithStreams(strings.NewReader(tc.input), &out)
			got, err := p.Ask("Bridge", tc.fallback)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAskInt(t *testing.T) {
	t.Parallel()

	t.Run("value entered", func(t *testing.T) {
		t.Parallel()

		p := NewWithStreams(strings.NewReader("9001\n"), &bytes.Buffer{})
		got, err := p.AskInt("VMID", 100)
		require.NoError(t, err)
		assert.Equal(t, 9001, got)
	})

	t.Run("empty returns fallback", func(t *testing.T) {
		t.Parallel()

		p := NewWithStreams(strings.NewReader("\n"), &bytes.Buffer{})
		got, err := p.AskInt("VMID", 100)
		require.NoError(t, err)
		assert.Equal(t, 100, got)
	})

	t.Run("not a number", func(t *testing.T) {
		t.Parallel()

		p := NewWithStreams(strings.NewReader("abc\n"), &bytes.Buffer{})
		_, err := p.AskInt("VMID", 100)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid number")
	})
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name     string
		input    string
		fallback bool
		want     bool
		wantErr  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "yes full word", input: "yes\n", want: true},
		{name: "no", input: "n\n", fallback: true, want: false},
		{name: "empty keeps fallback true", input: "\n", fallback: true, want: true},
		{name: "empty keeps fallback false", input: "\n", want: false},
		{name: "garbage", input: "maybe\n", wantErr: true},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := NewWithStreams(strings.NewReader(tc.input), &bytes.Buffer{})
			got, err := p.Confirm("Destroy VM", tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	options := []string{"local-lvm", "local-zfs", "ceph-pool"}

	t.Run("pick second", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		p := NewWithStreams(strings.NewReader("2\n"), &out)
		idx, err := p.Select("Select storage", options, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, idx)
		assert.Contains(t, out.String(), "1) local-lvm")
		assert.Contains(t, out.String(), "3) ceph-pool")
	})

	t.Run("empty keeps fallback", func(t *testing.T) {
		t.Parallel()

		p := NewWithStreams(strings.NewReader("\n"), &bytes.Buffer{})
		idx, err := p.Select("Select storage", options, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, idx)
	})

	t.Run("out of range", func(t *testing.T) {
		t.Parallel()

		p := NewWithStreams(strings.NewReader("9\n"), &bytes.Buffer{})
		_, err := p.Select("Select storage", options, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})

	t.Run("no options", func(t *testing.T) {
		t.Parallel()

		p := NewWithStreams(strings.NewReader("1\n"), &bytes.Buffer{})
		_, err := p.Select("Select storage", nil, 0)
		require.Error(t, err)
	})
}

func TestPasswordNonTerminal(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewWithStreams(strings.NewReader("s3cret\n"), &out)
	got, err := p.Password("Password")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
	assert.Contains(t, out.String(), "Password: ")
}
