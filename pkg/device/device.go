// Package device describes the transport endpoints to a host framework:
// the devices a consumer can open and the descriptors of the input and
// output implementations.
package device

import (
	"errors"
	"fmt"
	"sort"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/srediag/shmemdev/api"
)

// Info is one enumerated device.
type Info struct {
	Name        string
	Description string
}

const (
	placeholderName        = "shmem"
	placeholderDescription = "placeholder"
)

// allocInfos is replaced in tests to simulate allocation failure.
var allocInfos = func(n int) ([]Info, error) {
	return make([]Info, 0, n), nil
}

// ListDevices reports the devices available to a consumer. There is no real
// discovery: the rendezvous path is supplied by the caller, so the list is
// always the single placeholder entry.
func ListDevices() ([]Info, error) {
	infos, err := allocInfos(1)
	if err != nil {
		return nil, api.NewError(api.ErrAllocation, "device.ListDevices", "", err)
	}
	return append(infos, Info{Name: placeholderName, Description: placeholderDescription}), nil
}

// Direction tells inputs from outputs.
type Direction int

const (
	// Input endpoints produce packets for the host, like the shared memory reader.
	Input Direction = iota
	// Output endpoints consume packets from the host, like the callback sink.
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Descriptor is what a host framework needs to register an endpoint.
type Descriptor struct {
	Name      string
	LongName  string
	Direction Direction
	// Options lists the option names the endpoint understands.
	Options []string
}

var registry = cmap.New[Descriptor]()

// Register adds d, replacing a descriptor of the same name.
func Register(d Descriptor) error {
	if d.Name == "" {
		return api.NewError(api.ErrConfiguration, "device.Register", "", errors.New("descriptor without a name"))
	}
	registry.Set(d.Name, d)
	return nil
}

// Lookup returns the descriptor registered under name.
func Lookup(name string) (Descriptor, bool) {
	return registry.Get(name)
}

// Descriptors returns every registered descriptor, sorted by name.
func Descriptors() []Descriptor {
	out := make([]Descriptor, 0, registry.Count())
	for _, d := range registry.Items() {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func init() {
	_ = Register(Descriptor{
		Name:      "shmemdev",
		LongName:  "Linux shared memory",
		Direction: Input,
		Options:   []string{"fifo", "minfps", "fmt", "size", "framerate", "nonblock"},
	})
	_ = Register(Descriptor{
		Name:      "callback",
		LongName:  "Callback output device",
		Direction: Output,
	})
}
