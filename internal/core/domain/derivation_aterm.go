package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

const atermPrefix = "Derive("

// Unparse renders d in the canonical text form. With mask set, output paths and
// the env entries named after outputs are blanked, as done before modulo hashing.
func (d *Derivation) Unparse(dir StoreDir, mask bool) (string, error) {
	inputs := make(map[string]OutputNameSet, len(d.InputDrvs))
	for p, names := range d.InputDrvs {
		inputs[dir.Print(p)] = names
	}
	return d.UnparseWithInputs(dir, mask, inputs)
}

// UnparseWithInputs renders d with inputs in place of the input recipe edges.
// Keys of inputs are written verbatim; modulo hashing passes digests there.
func (d *Derivation) UnparseWithInputs(dir StoreDir, mask bool, inputs map[string]OutputNameSet) (string, error) {
	var sb strings.Builder
	sb.WriteString(atermPrefix)

	sb.WriteByte('[')
	for i, name := range d.OutputNames() {
		if i > 0 {
			sb.WriteByte(',')
		}
		path, methodAlgo, digest, err := d.outputFields(dir, name, mask)
		if err != nil {
			return "", err
		}
		sb.WriteByte('(')
		writeString(&sb, name)
		sb.WriteByte(',')
		writeString(&sb, path)
		sb.WriteByte(',')
		writeString(&sb, methodAlgo)
		sb.WriteByte(',')
		writeString(&sb, digest)
		sb.WriteByte(')')
	}
	sb.WriteString("],[")

	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('(')
		writeString(&sb, k)
		sb.WriteByte(',')
		writeStrings(&sb, inputs[k].Sorted())
		sb.WriteByte(')')
	}
	sb.WriteString("],")

	srcs := make([]string, 0, len(d.InputSrcs))
	for _, p := range d.InputSrcs.Sorted() {
		srcs = append(srcs, dir.Print(p))
	}
	writeStrings(&sb, srcs)
	sb.WriteByte(',')
	writeString(&sb, d.Platform)
	sb.WriteByte(',')
	writeString(&sb, d.Builder)
	sb.WriteByte(',')
	writeStrings(&sb, d.Args)
	sb.WriteString(",[")

	envKeys := make([]string, 0, len(d.Env))
	for k := range d.Env {
		envKeys = append(envKeys, k)
	}
	slices.Sort(envKeys)
	for i, k := range envKeys {
		if i > 0 {
			sb.WriteByte(',')
		}
		v := d.Env[k]
		if _, isOutput := d.Outputs[k]; mask && isOutput {
			v = ""
		}
		sb.WriteByte('(')
		writeString(&sb, k)
		sb.WriteByte(',')
		writeString(&sb, v)
		sb.WriteByte(')')
	}
	sb.WriteString("])")
	return sb.String(), nil
}

func (d *Derivation) outputFields(dir StoreDir, name string, mask bool) (path, methodAlgo, digest string, err error) {
	switch o := d.Outputs[name].(type) {
	case InputAddressedOutput:
		if !mask {
			path = dir.Print(o.Path)
		}
	case CAFixedOutput:
		if !mask {
			p, err := o.Path(dir, d.Name, name)
			if err != nil {
				return "", "", "", zerr.With(err, "output", name)
			}
			path = dir.Print(p)
		}
		methodAlgo = o.CA.PrintMethodAlgo()
		digest = FormatDigest(o.CA.Hash(), Base16)
	case CAFloatingOutput:
		methodAlgo = PrintMethodAlgo(o.Method, o.Algo)
	case DeferredOutput:
	default:
		return "", "", "", zerr.With(zerr.Wrap(ErrInvalidDerivation, "unknown output kind"), "output", name)
	}
	return path, methodAlgo, digest, nil
}

func writeString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
}

func writeStrings(sb *strings.Builder, list []string) {
	sb.WriteByte('[')
	for i, s := range list {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeString(sb, s)
	}
	sb.WriteByte(']')
}

// ParseDerivation parses the canonical text form. name is the recipe name without
// ".drv"; it is needed to recompute fixed output paths.
func ParseDerivation(dir StoreDir, text, name string) (*Derivation, error) {
	p := &atermParser{s: text}
	drv, err := p.derivation(dir, name)
	if err != nil {
		return nil, zerr.With(err, "offset", p.pos)
	}
	return drv, nil
}

type atermParser struct {
	s   string
	pos int
}

func (p *atermParser) fail(msg string) error {
	return zerr.Wrap(ErrInvalidDerivation, msg)
}

func (p *atermParser) expect(tok string) error {
	if !strings.HasPrefix(p.s[p.pos:], tok) {
		return zerr.With(p.fail("unexpected input"), "expected", tok)
	}
	p.pos += len(tok)
	return nil
}

func (p *atermParser) peek(c byte) bool {
	return p.pos < len(p.s) && p.s[p.pos] == c
}

// endOfList consumes ']' and reports true, or consumes a ',' separator when not first.
func (p *atermParser) endOfList(first bool) (bool, error) {
	if p.peek(']') {
		p.pos++
		return true, nil
	}
	if !first {
		if err := p.expect(","); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (p *atermParser) str() (string, error) {
	if err := p.expect(`"`); err != nil {
		return "", err
	}
	var sb strings.Builder
	for {
		if p.pos >= len(p.s) {
			return "", p.fail("unterminated string")
		}
		c := p.s[p.pos]
		p.pos++
		switch c {
		case '"':
			return sb.String(), nil
		case '\\':
			if p.pos >= len(p.s) {
				return "", p.fail("unterminated escape")
			}
			e := p.s[p.pos]
			p.pos++
			switch e {
			case '"', '\\':
				sb.WriteByte(e)
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			default:
				return "", zerr.With(p.fail("unknown escape sequence"), "escape", `\`+string(e))
			}
		default:
			sb.WriteByte(c)
		}
	}
}

func (p *atermParser) strs() ([]string, error) {
	if err := p.expect("["); err != nil {
		return nil, err
	}
	var out []string
	for first := true; ; first = false {
		done, err := p.endOfList(first)
		if err != nil {
			return nil, err
		}
		if done {
			return out, nil
		}
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
}

func (p *atermParser) storePath(dir StoreDir) (StorePath, error) {
	s, err := p.str()
	if err != nil {
		return StorePath{}, err
	}
	if !strings.HasPrefix(s, "/") {
		return StorePath{}, zerr.With(p.fail("path is not absolute"), "path", s)
	}
	sp, err := dir.ParseStorePath(s)
	if err != nil {
		return StorePath{}, zerr.Wrap(ErrInvalidDerivation, err.Error())
	}
	return sp, nil
}

func (p *atermParser) derivation(dir StoreDir, name string) (*Derivation, error) {
	drv := NewDerivation(name, "", "")
	if err := p.expect(atermPrefix + "["); err != nil {
		return nil, err
	}

	for first := true; ; first = false {
		done, err := p.endOfList(first)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		if err := p.output(dir, drv); err != nil {
			return nil, err
		}
	}

	if err := p.expect(",["); err != nil {
		return nil, err
	}
	for first := true; ; first = false {
		done, err := p.endOfList(first)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		if err := p.expect("("); err != nil {
			return nil, err
		}
		drvPath, err := p.storePath(dir)
		if err != nil {
			return nil, err
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		names, err := p.strs()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		drv.InputDrvs[drvPath] = NewOutputNameSet(names...)
	}

	if err := p.expect(",["); err != nil {
		return nil, err
	}
	for first := true; ; first = false {
		done, err := p.endOfList(first)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		src, err := p.storePath(dir)
		if err != nil {
			return nil, err
		}
		drv.InputSrcs[src] = struct{}{}
	}

	var err error
	if err = p.expect(","); err != nil {
		return nil, err
	}
	if drv.Platform, err = p.str(); err != nil {
		return nil, err
	}
	if err = p.expect(","); err != nil {
		return nil, err
	}
	if drv.Builder, err = p.str(); err != nil {
		return nil, err
	}
	if err = p.expect(","); err != nil {
		return nil, err
	}
	if drv.Args, err = p.strs(); err != nil {
		return nil, err
	}

	if err = p.expect(",["); err != nil {
		return nil, err
	}
	for first := true; ; first = false {
		done, err := p.endOfList(first)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		if err := p.expect("("); err != nil {
			return nil, err
		}
		k, err := p.str()
		if err != nil {
			return nil, err
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		v, err := p.str()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		drv.Env[k] = v
	}

	if err := p.expect(")"); err != nil {
		return nil, err
	}
	if p.pos != len(p.s) {
		return nil, p.fail("trailing data")
	}
	return drv, nil
}

func (p *atermParser) output(dir StoreDir, drv *Derivation) error {
	if err := p.expect("("); err != nil {
		return err
	}
	fields := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		if i > 0 {
			if err := p.expect(","); err != nil {
				return err
			}
		}
		s, err := p.str()
		if err != nil {
			return err
		}
		fields = append(fields, s)
	}
	if err := p.expect(")"); err != nil {
		return err
	}

	name, pathS, methodAlgo, digest := fields[0], fields[1], fields[2], fields[3]
	if _, dup := drv.Outputs[name]; dup {
		return zerr.With(p.fail("duplicate output"), "output", name)
	}
	out, err := parseOutput(dir, pathS, methodAlgo, digest)
	if err != nil {
		return zerr.With(err, "output", name)
	}
	drv.Outputs[name] = out
	return nil
}

func parseOutput(dir StoreDir, pathS, methodAlgo, digest string) (DerivationOutput, error) {
	if methodAlgo == "" {
		if digest != "" {
			return nil, zerr.Wrap(ErrInvalidDerivation, "digest without algorithm")
		}
		if pathS == "" {
			return DeferredOutput{}, nil
		}
		p, err := dir.ParseStorePath(pathS)
		if err != nil {
			return nil, zerr.Wrap(ErrInvalidDerivation, err.Error())
		}
		return InputAddressedOutput{Path: p}, nil
	}

	method, algo, err := ParseMethodAlgo(methodAlgo)
	if err != nil {
		return nil, zerr.Wrap(ErrInvalidDerivation, err.Error())
	}
	if digest == "" {
		if pathS != "" {
			return nil, zerr.Wrap(ErrInvalidDerivation, "floating output must not specify a path")
		}
		return CAFloatingOutput{Method: method, Algo: algo}, nil
	}
	if !dir.IsStorePath(pathS) {
		return nil, zerr.With(zerr.Wrap(ErrInvalidDerivation, "fixed output path is not a store path"), "path", pathS)
	}
	h, err := ParseDigest(algo, digest)
	if err != nil {
		return nil, zerr.Wrap(ErrInvalidDerivation, err.Error())
	}
	ca, err := NewContentAddress(method, h)
	if err != nil {
		return nil, zerr.Wrap(ErrInvalidDerivation, err.Error())
	}
	return CAFixedOutput{CA: ca}, nil
}
