package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnsetNeverExpires(t *testing.T) {
	now := time.Now()
	p := Unset()

	assert.False(t, p.IsSet())
	assert.False(t, p.Expired(time.Unix(0, 0), now))
	assert.False(t, p.Expired(time.Date(2012, 5, 19, 0, 0, 0, 0, time.UTC), now))
	assert.False(t, Judge(time.Time{}, Policy{}))
}

func TestExpiredIsStrict(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p := MaxAge(500 * time.Millisecond)

	assert.False(t, p.Expired(now.Add(-500*time.Millisecond), now), "exactly max age is kept")
	assert.True(t, p.Expired(now.Add(-501*time.Millisecond), now))
	assert.False(t, p.Expired(now, now))
	assert.False(t, p.Expired(now.Add(time.Hour), now), "future timestamps are kept")
}

func TestJudge(t *testing.T) {
	assert.True(t, Judge(time.Date(2012, 5, 19, 0, 0, 0, 0, time.UTC), MaxAge(10*time.Millisecond)))
	assert.False(t, Judge(time.Now(), MaxAge(3*time.Second)))
}

func TestPolicyAccessors(t *testing.T) {
	d, ok := MaxAge(time.Minute).MaxAge()
	assert.True(t, ok)
	assert.Equal(t, time.Minute, d)
	assert.Equal(t, "1m0s", MaxAge(time.Minute).String())
	assert.Equal(t, "unset", Unset().String())
}

func TestParseMaxAge(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		unset   bool
		wantErr bool
	}{
		{in: "", unset: true},
		{in: "   ", unset: true},
		{in: "200", want: 200 * time.Millisecond},
		{in: "500ms", want: 500 * time.Millisecond},
		{in: "2h30m", want: 2*time.Hour + 30*time.Minute},
		{in: "3d", want: 72 * time.Hour},
		{in: "3 days", want: 259200000 * time.Millisecond},
		{in: "1 day", want: 24 * time.Hour},
		{in: "1 week 2 days", want: 9 * 24 * time.Hour},
		{in: "10 Minutes", want: 10 * time.Minute},
		{in: "1.5h", want: 90 * time.Minute},
		{in: "1 year", want: year},
		{in: "-5", wantErr: true},
		{in: "-3 days", wantErr: true},
		{in: "soon", wantErr: true},
		{in: "3 fortnights", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "Inf", wantErr: true},
		{in: "-Inf", wantErr: true},
		{in: "1e30", wantErr: true},
		{in: "300 years", wantErr: true},
		{in: "200 years 200 years", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ParseMaxAge(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.unset {
				assert.False(t, p.IsSet())
				return
			}
			d, ok := p.MaxAge()
			require.True(t, ok)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestParseMaxAgeOutOfRange(t *testing.T) {
	for _, in := range []string{"NaN", "Inf", "Infinity", "1e30", "300 years", "200 years 200 years"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseMaxAge(in)
			require.ErrorIs(t, err, ErrOutOfRange)
		})
	}
}

func TestParseMaxAgeLongKeepsFreshFiles(t *testing.T) {
	p, err := ParseMaxAge("100 years")
	require.NoError(t, err)

	d, ok := p.MaxAge()
	require.True(t, ok)
	assert.Positive(t, d)

	now := time.Now()
	assert.False(t, p.Expired(now, now))
	assert.False(t, p.Expired(now.AddDate(-50, 0, 0), now))
}
