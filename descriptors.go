package falcon8

import (
	"fmt"

	libusb "github.com/gotmc/libusb/v2"
)

// Endpoint identifies one endpoint found while walking a configuration
// descriptor: the configuration value, owning interface number and
// alternate setting, and the endpoint address.
type Endpoint struct {
	Config    uint8
	Interface uint8
	Alt       uint8
	Address   uint8
}

func (e Endpoint) String() string {
	return fmt.Sprintf("config %d iface %d alt %d addr %#02x", e.Config, e.Interface, e.Alt, e.Address)
}

// Endpoints walks the device's active configuration descriptor and returns
// every endpoint in declaration order, interface by interface and alternate
// setting by alternate setting. Index 0 is therefore the first endpoint of
// the first alternate setting of the first interface.
func (d *Device) Endpoints() ([]Endpoint, error) {
	config, err := d.dev.ActiveConfigDescriptor()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	return walkEndpoints(config), nil
}

func walkEndpoints(config *libusb.ConfigDescriptor) []Endpoint {
	var endpoints []Endpoint
	for _, iface := range config.SupportedInterfaces {
		for _, alt := range iface.InterfaceDescriptors {
			for _, endpoint := range alt.EndpointDescriptors {
				endpoints = append(endpoints, Endpoint{
					Config:    uint8(config.ConfigurationValue),
					Interface: uint8(alt.InterfaceNumber),
					Alt:       uint8(alt.AlternateSetting),
					Address:   uint8(endpoint.EndpointAddress),
				})
			}
		}
	}
	return endpoints
}
