package find

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilters(t *testing.T) {
	prologix := Device{Name: "ttyUSB0", VendorID: "0403", Manufacturer: "Prologix", Serial: "PX123"}
	arduino := Device{Name: "ttyACM0", VendorID: "2341", Manufacturer: "Arduino", Serial: "A1"}

	assert.True(t, PrologixFilter(prologix))
	assert.False(t, PrologixFilter(arduino))
	assert.True(t, SerialFilter("PX123")(prologix))
	assert.False(t, SerialFilter("PX123")(arduino))
}

func TestPick(t *testing.T) {
	devs := []Device{
		{Name: "ttyACM0", VendorID: "2341", Manufacturer: "Arduino"},
		{Name: "ttyUSB0", VendorID: "0403", Manufacturer: "Prologix"},
	}

	dev, err := pick(devs, PrologixFilter)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", dev)

	_, err = pick(devs, SerialFilter("nope"))
	assert.Error(t, err)

	_, err = pick(devs, nil)
	assert.Error(t, err, "ambiguous without a filter")

	dev, err = pick(devs[1:], nil)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", dev)
}

func TestDeviceDev(t *testing.T) {
	assert.Equal(t, "/dev/ttyUSB1", Device{Name: "ttyUSB1"}.Dev())
}
