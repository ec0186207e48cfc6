package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "separate value",
			args:         []string{"-a", ":8080", "-x", "1"},
			allowedFlags: []string{"-a"},
			want:         []string{"-a", ":8080"},
		},
		{
			name:         "equals form",
			args:         []string{"--config=alt.json", "-a", ":8080"},
			allowedFlags: []string{"--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "unknown flags and positionals ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "trailing flag without value",
			args:         []string{"-m"},
			allowedFlags: []string{"-m"},
			want:         []string{"-m"},
		},
		{
			name:         "next arg is a flag, not a value",
			args:         []string{"-m", "-s", "secret"},
			allowedFlags: []string{"-m", "-s"},
			want:         []string{"-m", "-s", "secret"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-a", ":1", "-c", "cfg.json"}
	assert.Equal(t, "cfg.json", JsonConfigFlags())

	os.Args = []string{"bin", "-config=other.json"}
	assert.Equal(t, "other.json", JsonConfigFlags())

	os.Args = []string{"bin"}
	assert.Equal(t, "", JsonConfigFlags())
}

func TestEnvString(t *testing.T) {
	dst := "default"

	t.Setenv("SOUNDHUB_TEST_VALUE", "")
	assert.False(t, EnvString("SOUNDHUB_TEST_VALUE", &dst))
	assert.Equal(t, "default", dst)

	t.Setenv("SOUNDHUB_TEST_VALUE", "from-env")
	assert.True(t, EnvString("SOUNDHUB_TEST_VALUE", &dst))
	assert.Equal(t, "from-env", dst)
}

func TestEnvBool(t *testing.T) {
	dst := false

	t.Setenv("SOUNDHUB_TEST_FLAG", "")
	changed, err := EnvBool("SOUNDHUB_TEST_FLAG", &dst)
	assert.NoError(t, err)
	assert.False(t, changed)

	t.Setenv("SOUNDHUB_TEST_FLAG", "true")
	changed, err = EnvBool("SOUNDHUB_TEST_FLAG", &dst)
	assert.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, dst)

	t.Setenv("SOUNDHUB_TEST_FLAG", "maybe")
	changed, err = EnvBool("SOUNDHUB_TEST_FLAG", &dst)
	assert.Error(t, err)
	assert.False(t, changed)
	assert.True(t, dst)
}
