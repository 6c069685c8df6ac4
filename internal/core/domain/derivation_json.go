package domain

import (
	"encoding/json"
	"strings"

	"go.trai.ch/zerr"
)

type jsonOutput struct {
	Path     string `json:"path,omitempty"`
	Method   string `json:"method,omitempty"`
	HashAlgo string `json:"hashAlgo,omitempty"`
	Hash     string `json:"hash,omitempty"`
}

type jsonInputDrv struct {
	Outputs []string `json:"outputs"`
}

type jsonDerivation struct {
	Name      string                  `json:"name"`
	Outputs   map[string]jsonOutput   `json:"outputs"`
	InputSrcs []string                `json:"inputSrcs"`
	InputDrvs map[string]jsonInputDrv `json:"inputDrvs"`
	System    string                  `json:"system"`
	Builder   string                  `json:"builder"`
	Args      []string                `json:"args"`
	Env       map[string]string       `json:"env"`
}

// MarshalDerivationJSON renders d in the JSON shape used by "derivation show".
func MarshalDerivationJSON(dir StoreDir, d *Derivation) ([]byte, error) {
	jd := jsonDerivation{
		Name:      d.Name,
		Outputs:   make(map[string]jsonOutput, len(d.Outputs)),
		InputSrcs: make([]string, 0, len(d.InputSrcs)),
		InputDrvs: make(map[string]jsonInputDrv, len(d.InputDrvs)),
		System:    d.Platform,
		Builder:   d.Builder,
		Args:      d.Args,
		Env:       d.Env,
	}
	if jd.Args == nil {
		jd.Args = []string{}
	}
	if jd.Env == nil {
		jd.Env = map[string]string{}
	}

	for name, out := range d.Outputs {
		var jo jsonOutput
		switch o := out.(type) {
		case InputAddressedOutput:
			jo.Path = dir.Print(o.Path)
		case CAFixedOutput:
			p, err := o.Path(dir, d.Name, name)
			if err != nil {
				return nil, zerr.With(err, "output", name)
			}
			jo.Path = dir.Print(p)
			jo.Method = o.CA.Method().String()
			jo.HashAlgo = o.CA.Hash().Type().String()
			jo.Hash = FormatDigest(o.CA.Hash(), Base16)
		case CAFloatingOutput:
			jo.Method = o.Method.String()
			jo.HashAlgo = o.Algo.String()
		case DeferredOutput:
		}
		jd.Outputs[name] = jo
	}
	for _, p := range d.InputSrcs.Sorted() {
		jd.InputSrcs = append(jd.InputSrcs, dir.Print(p))
	}
	for p, names := range d.InputDrvs {
		jd.InputDrvs[dir.Print(p)] = jsonInputDrv{Outputs: names.Sorted()}
	}

	return json.MarshalIndent(jd, "", "  ")
}

// UnmarshalDerivationJSON parses the JSON shape produced by MarshalDerivationJSON.
// A "hashAlgo" carrying a method prefix ("r:sha256") is accepted as well.
// Paths of input-addressed outputs may be empty, leaving them deferred until filled.
func UnmarshalDerivationJSON(dir StoreDir, data []byte) (*Derivation, error) {
	var jd jsonDerivation
	if err := json.Unmarshal(data, &jd); err != nil {
		return nil, zerr.Wrap(ErrInvalidDerivation, err.Error())
	}

	d := NewDerivation(jd.Name, jd.System, jd.Builder)
	if len(jd.Args) > 0 {
		d.Args = jd.Args
	}
	for k, v := range jd.Env {
		d.Env[k] = v
	}

	for name, jo := range jd.Outputs {
		out, err := jsonOutputToOutput(dir, jo)
		if err != nil {
			return nil, zerr.With(err, "output", name)
		}
		d.Outputs[name] = out
	}
	for _, s := range jd.InputSrcs {
		p, err := dir.ParseStorePath(s)
		if err != nil {
			return nil, zerr.Wrap(ErrInvalidDerivation, err.Error())
		}
		d.InputSrcs[p] = struct{}{}
	}
	for s, in := range jd.InputDrvs {
		p, err := dir.ParseStorePath(s)
		if err != nil {
			return nil, zerr.Wrap(ErrInvalidDerivation, err.Error())
		}
		d.InputDrvs[p] = NewOutputNameSet(in.Outputs...)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func jsonOutputToOutput(dir StoreDir, jo jsonOutput) (DerivationOutput, error) {
	if jo.HashAlgo == "" {
		if jo.Path == "" {
			return DeferredOutput{}, nil
		}
		p, err := dir.ParseStorePath(jo.Path)
		if err != nil {
			return nil, zerr.Wrap(ErrInvalidDerivation, err.Error())
		}
		return InputAddressedOutput{Path: p}, nil
	}

	var (
		method ContentAddressMethod
		algo   HashAlgorithm
		err    error
	)
	if strings.Contains(jo.HashAlgo, ":") || jo.Method == "" {
		method, algo, err = ParseMethodAlgo(jo.HashAlgo)
	} else {
		method, err = ParseContentAddressMethod(jo.Method)
		if err == nil {
			algo, err = ParseHashAlgorithm(jo.HashAlgo)
		}
	}
	if err != nil {
		return nil, zerr.Wrap(ErrInvalidDerivation, err.Error())
	}

	if jo.Hash == "" {
		return CAFloatingOutput{Method: method, Algo: algo}, nil
	}
	h, err := ParseDigest(algo, jo.Hash)
	if err != nil {
		return nil, zerr.Wrap(ErrInvalidDerivation, err.Error())
	}
	ca, err := NewContentAddress(method, h)
	if err != nil {
		return nil, zerr.Wrap(ErrInvalidDerivation, err.Error())
	}
	return CAFixedOutput{CA: ca}, nil
}
