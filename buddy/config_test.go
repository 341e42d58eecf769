package buddy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"reference", ConfigReference, false},
		{"large", ConfigLarge, false},
		{"header-sized minimum block", Config{MinExp: 4, MaxExp: 10}, false},
		{"minimum block smaller than header", Config{MinExp: 3, MaxExp: 10}, true},
		{"equal exponents", Config{MinExp: 8, MaxExp: 8}, true},
		{"inverted exponents", Config{MinExp: 10, MaxExp: 8}, true},
		{"arena beyond uint32 offsets", Config{MinExp: 5, MaxExp: 33}, true},
		{"largest arena", Config{MinExp: 12, MaxExp: 32}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrBadConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func Test_NewRejectsBadConfig(t *testing.T) {
	_, err := New(&Config{MinExp: 16, MaxExp: 5})
	require.ErrorIs(t, err, ErrBadConfig)
}

func Test_NewNilConfigUsesDefault(t *testing.T) {
	a, err := New(nil)
	require.NoError(t, err)
	defer a.Close()
	require.Equal(t, DefaultConfig.MinExp, a.Config().MinExp)
	require.Equal(t, DefaultConfig.MaxExp, a.Config().MaxExp)
}

func Test_LevelFor(t *testing.T) {
	cfg := ConfigReference // 32B..64KB, 16-byte header
	tests := []struct {
		n      int
		level  int
		wantOK bool
	}{
		{0, 0, true},
		{16, 0, true},
		{17, 1, true},
		{48, 1, true},
		{49, 2, true},
		{50, 2, true},
		{100, 2, true},
		{112, 2, true},
		{113, 3, true},
		{1<<16 - HeaderSize, 11, true},
		{1<<16 - HeaderSize + 1, 0, false},
		{1 << 16, 0, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		level, ok := cfg.LevelFor(tt.n)
		require.Equal(t, tt.wantOK, ok, "LevelFor(%d) ok", tt.n)
		if tt.wantOK {
			require.Equal(t, tt.level, level, "LevelFor(%d)", tt.n)
		}
	}
}

func Test_ConfigGeometry(t *testing.T) {
	cfg := ConfigReference
	require.Equal(t, 11, cfg.TopLevel())
	require.Equal(t, uint64(1<<16), cfg.ArenaSize())
	require.Equal(t, uint64(32), cfg.LevelSize(0))
	require.Equal(t, uint64(128), cfg.LevelSize(2))
	require.Equal(t, uint64(112), cfg.Capacity(2))
	require.Equal(t, cfg.ArenaSize(), cfg.LevelSize(cfg.TopLevel()))
}
