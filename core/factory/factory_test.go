package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinDriver struct {
	Address string
	Timeout int
}

type pinDriverConf struct {
	Address string `json:"address"`
	Timeout int    `json:"timeout_ms"`
}

func newPinDriverRegistry(t *testing.T) *Registry[*pinDriver] {
	t.Helper()
	reg := NewRegistry[*pinDriver]()
	require.NoError(t, reg.Register("pigpio", func(conf map[string]any) (*pinDriver, error) {
		var c pinDriverConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &pinDriver{Address: c.Address, Timeout: c.Timeout}, nil
	}))
	return reg
}

func TestRegistry_Create(t *testing.T) {
	reg := newPinDriverRegistry(t)
	inst, err := reg.Create(ModuleConfig{Type: "pigpio", Conf: map[string]any{"address": "pi:8888", "timeout_ms": 250}})
	require.NoError(t, err)
	assert.Equal(t, "pi:8888", inst.Address)
	assert.Equal(t, 250, inst.Timeout)
}

// Environment overrides deliver numbers as strings.
func TestDecode_WeakTypes(t *testing.T) {
	var c pinDriverConf
	require.NoError(t, Decode(map[string]any{"timeout_ms": "1500"}, &c))
	assert.Equal(t, 1500, c.Timeout)
}

func TestRegistry_Errors(t *testing.T) {
	reg := newPinDriverRegistry(t)
	assert.Error(t, reg.Register("pigpio", func(map[string]any) (*pinDriver, error) { return nil, nil }), "duplicate")
	assert.Error(t, reg.Register("nil", nil))

	_, err := reg.Create(ModuleConfig{Type: "sysfs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pigpio")
}

func TestRegistry_Types(t *testing.T) {
	reg := newPinDriverRegistry(t)
	require.NoError(t, reg.Register("dummy", func(map[string]any) (*pinDriver, error) { return &pinDriver{}, nil }))
	assert.Equal(t, []string{"dummy", "pigpio"}, reg.Types())
}
