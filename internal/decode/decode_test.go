package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMAC(t *testing.T) {
	got, err := MAC([]byte{0x00, 0x16, 0xC2, 0x9C, 0x15, 0x50})
	require.NoError(t, err)
	assert.Equal(t, "0016c29c1550", got)

	for _, text := range []string{"00:16:C2:9C:15:50", "0x0016c29c1550", "0016.c29c.1550", "00-16-c2-9c-15-50"} {
		got, err := MAC([]byte(text))
		require.NoError(t, err, text)
		assert.Equal(t, "0016c29c1550", got, text)
	}

	for _, bad := range []interface{}{[]byte{1, 2, 3}, []byte("zz:16:c2:9c:15:50"), 42, nil} {
		_, err := MAC(bad)
		assert.ErrorIs(t, err, ErrMalformed)
	}
}

func TestMACFromNodes(t *testing.T) {
	got, err := MACFromNodes([]int{0, 22, 194, 156, 21, 80})
	require.NoError(t, err)
	assert.Equal(t, "0016c29c1550", got)

	_, err = MACFromNodes([]int{0, 22, 194})
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = MACFromNodes([]int{0, 22, 194, 156, 21, 256})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestIPv6FromNodes(t *testing.T) {
	nodes := []int{254, 128, 0, 0, 0, 0, 0, 0, 53, 111, 109, 168, 125, 42, 84, 88}
	got, err := IPv6FromNodes(nodes)
	require.NoError(t, err)
	assert.Equal(t, "fe80:0000:0000:0000:356f:6da8:7d2a:5458", got)

	_, err = IPv6FromNodes(nodes[:15])
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestIPv4(t *testing.T) {
	got, err := IPv4("10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", got)

	got, err = IPv4([]byte{255, 255, 255, 0})
	require.NoError(t, err)
	assert.Equal(t, "255.255.255.0", got)

	got, err = IPv4FromNodes([]int{192, 168, 1, 20})
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20", got)

	_, err = IPv4("10.0.0")
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = IPv4FromNodes([]int{300, 1, 1, 1})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestString(t *testing.T) {
	got, err := String([]byte("  Gi1/0/1\x00\x01 "))
	require.NoError(t, err)
	assert.Equal(t, "Gi1/0/1", got)

	got, err = String([]byte{'a', 0xff, 'b'})
	require.NoError(t, err)
	assert.Equal(t, "ab", got)

	got, err = String(17)
	require.NoError(t, err)
	assert.Equal(t, "17", got)

	_, err = String(nil)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestInt(t *testing.T) {
	for _, v := range []interface{}{5, int64(5), uint(5), uint32(5), uint64(5)} {
		got, err := Int(v)
		require.NoError(t, err)
		assert.Equal(t, 5, got)
	}
	_, err := Int([]byte("5"))
	assert.ErrorIs(t, err, ErrMalformed)

	big, err := Uint64(uint64(1) << 40)
	require.NoError(t, err)
	assert.Equal(t, uint64(1)<<40, big)
}

func TestVLANs(t *testing.T) {
	mask := make([]byte, 128)
	mask[0] = 0xC0 // bits 0 and 1
	mask[1] = 0x40 // bit 9
	got, err := VLANs(mask, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 9}, got)

	got, err = VLANs(mask, 1024)
	require.NoError(t, err)
	assert.Equal(t, []int{1024, 1025, 1033}, got)

	empty, err := VLANs(make([]byte, 128), 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPorts(t *testing.T) {
	got, err := Ports([]byte{0x80, 0x01})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 16}, got)
}

func TestCapabilities(t *testing.T) {
	got, err := Capabilities([]byte{0x28, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []string{"bridge", "router"}, got)

	got, err = Capabilities([]byte{0x00, 0x80})
	require.NoError(t, err)
	assert.Equal(t, []string{"bit8"}, got)
}
