package outputs

import (
	"github.com/fxamacker/cbor/v2"
)

// registryVersion is bumped when the file layout changes.
const registryVersion = 1

// registryFile is the on-disk form of the registry. Keys are store path base
// names; an unbuilt output maps to "".
type registryFile struct {
	Version int                          `cbor:"1,keyasint"`
	Recipes map[string]map[string]string `cbor:"2,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	// Core deterministic encoding sorts map keys, so the same registry
	// always produces the same bytes.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("outputs: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("outputs: CBOR decoder initialization failed: " + err.Error())
	}
}

func encode(f *registryFile) ([]byte, error) {
	return encMode.Marshal(f)
}

func decode(data []byte) (*registryFile, error) {
	var f registryFile
	if err := decMode.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
