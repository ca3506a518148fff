// Package batch reads the yaml files describing a genesis and the transactions proposed for an
// epoch.
//
// A batch file looks like:
//
//	genesis:
//	  - value: "10"
//	    key: alice.pem
//	transactions:
//	  - name: pay-bob
//	    inputs:
//	      - prev_tx: genesis
//	        index: 0
//	        key: alice.pem
//	    outputs:
//	      - value: "9.5"
//	        address: 3b6a27bc...
//
// prev_tx is either a transaction hash in hex, "genesis", or the name of an earlier transaction of
// the file. An input is signed either by a hex signature or, at load time, by the key file it
// names. An output is paid to a hex address or to the public key of a key file. Key paths are
// relative to the batch file.
package batch

import (
	"os"
	"path/filepath"

	"github.com/Luismorlan/scrooge_in_go/model"
	"github.com/Luismorlan/scrooge_in_go/utils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// GenesisName refers to the genesis transaction in prev_tx.
const GenesisName = "genesis"

type OutputSpec struct {
	Value   string `yaml:"value"`
	Address string `yaml:"address,omitempty"`
	Key     string `yaml:"key,omitempty"`
}

type InputSpec struct {
	PrevTx    string `yaml:"prev_tx"`
	Index     uint64 `yaml:"index"`
	Signature string `yaml:"signature,omitempty"`
	Key       string `yaml:"key,omitempty"`
}

type TxSpec struct {
	Name    string       `yaml:"name,omitempty"`
	Inputs  []InputSpec  `yaml:"inputs"`
	Outputs []OutputSpec `yaml:"outputs"`
}

type File struct {
	Genesis      []OutputSpec `yaml:"genesis,omitempty"`
	Transactions []TxSpec     `yaml:"transactions,omitempty"`
}

// Batch is a decoded batch file.
type Batch struct {
	// Nil when the file has no genesis section.
	Genesis *model.Tx
	// Proposed transactions, in file order.
	Txs []*model.Tx
	// Hash of every named transaction, and of the genesis under GenesisName.
	Names map[string]model.TxHash
}

type decoder struct {
	dir    string
	scheme utils.Scheme
	hasher model.Hasher
	keys   map[string]utils.KeyPair
	names  map[string]model.TxHash
}

// Load reads and decodes the batch file at path.
func Load(path string, scheme utils.Scheme, hasher model.Hasher) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read batch %s", path)
	}
	b, err := Parse(data, filepath.Dir(path), scheme, hasher)
	if err != nil {
		return nil, errors.Wrapf(err, "batch %s", path)
	}
	return b, nil
}

// Parse decodes a batch file, resolving key paths against dir.
func Parse(data []byte, dir string, scheme utils.Scheme, hasher model.Hasher) (*Batch, error) {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse batch")
	}
	d := &decoder{
		dir:    dir,
		scheme: scheme,
		hasher: hasher,
		keys:   make(map[string]utils.KeyPair),
		names:  make(map[string]model.TxHash),
	}

	res := &Batch{Names: d.names}
	if len(f.Genesis) > 0 {
		genesis, err := d.genesis(f.Genesis)
		if err != nil {
			return nil, errors.Wrap(err, "genesis")
		}
		res.Genesis = genesis
		d.names[GenesisName] = genesis.Hash()
	}
	for i, spec := range f.Transactions {
		tx, err := d.tx(spec)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %d", i)
		}
		if spec.Name != "" {
			if _, exist := d.names[spec.Name]; exist {
				return nil, errors.Errorf("transaction %d: name %q is already used", i, spec.Name)
			}
			d.names[spec.Name] = tx.Hash()
		}
		res.Txs = append(res.Txs, tx)
	}
	return res, nil
}

func (d *decoder) genesis(outputs []OutputSpec) (*model.Tx, error) {
	b := model.NewTxBuilderWithHasher(d.hasher).AddGenesisInput()
	if err := d.addOutputs(b, outputs); err != nil {
		return nil, err
	}
	return b.Build()
}

func (d *decoder) tx(spec TxSpec) (*model.Tx, error) {
	b := model.NewTxBuilderWithHasher(d.hasher)
	for i, in := range spec.Inputs {
		hash, err := d.prevTx(in.PrevTx)
		if err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
		b.AddInput(hash, model.TxIndex(in.Index))
	}
	if err := d.addOutputs(b, spec.Outputs); err != nil {
		return nil, err
	}

	for i, in := range spec.Inputs {
		sig, err := d.signature(in, b, model.TxIndex(i))
		if err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
		// Unsigned inputs are kept so that the handler can turn them down.
		if sig == nil {
			continue
		}
		if err := b.AddSignature(sig, model.TxIndex(i)); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func (d *decoder) prevTx(ref string) (model.TxHash, error) {
	if h, ok := d.names[ref]; ok {
		return h, nil
	}
	h, err := model.NewTxHashFromStr(ref)
	if err != nil {
		return model.TxHash{}, errors.Wrapf(err, "prev_tx %q is neither a hash nor a known name", ref)
	}
	return h, nil
}

// signature signs input index of b when the input names a key file.
func (d *decoder) signature(in InputSpec, b *model.TxBuilder, index model.TxIndex) (model.Signature, error) {
	switch {
	case in.Signature != "" && in.Key != "":
		return nil, errors.New("signature and key are exclusive")
	case in.Signature != "":
		raw, err := utils.HexToBytes(in.Signature)
		if err != nil {
			return nil, err
		}
		return d.scheme.ParseSignature(raw)
	case in.Key != "":
		key, err := d.key(in.Key)
		if err != nil {
			return nil, err
		}
		payload, err := b.SignableBytes(index)
		if err != nil {
			return nil, err
		}
		return key.Sign(payload)
	}
	return nil, nil
}

func (d *decoder) addOutputs(b *model.TxBuilder, outputs []OutputSpec) error {
	for i, out := range outputs {
		value, err := utils.ParseAmount(out.Value)
		if err != nil {
			return errors.Wrapf(err, "output %d", i)
		}
		address, err := d.address(out)
		if err != nil {
			return errors.Wrapf(err, "output %d", i)
		}
		b.AddOutput(value, address)
	}
	return nil
}

func (d *decoder) address(out OutputSpec) (model.Address, error) {
	switch {
	case out.Address != "" && out.Key != "":
		return nil, errors.New("address and key are exclusive")
	case out.Address != "":
		b, err := utils.HexToBytes(out.Address)
		if err != nil {
			return nil, err
		}
		return d.scheme.ParsePublicKey(b)
	case out.Key != "":
		key, err := d.key(out.Key)
		if err != nil {
			return nil, err
		}
		return key.PublicKey(), nil
	}
	return nil, errors.New("output needs an address or a key")
}

// key loads a key file once per batch. Its scheme must be the ledger's.
func (d *decoder) key(path string) (utils.KeyPair, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.dir, path)
	}
	if k, ok := d.keys[path]; ok {
		return k, nil
	}
	k, scheme, err := utils.ReadKeyFromFPath(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read key %s", path)
	}
	if scheme.Name() != d.scheme.Name() {
		return nil, errors.Errorf("key %s is a %s key, the ledger uses %s", path, scheme.Name(), d.scheme.Name())
	}
	d.keys[path] = k
	return k, nil
}
