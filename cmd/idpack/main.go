package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/pflag"

	"xdao.co/idpack/chain"
	"xdao.co/idpack/codec"
	"xdao.co/idpack/ident"
	"xdao.co/idpack/payload"
	"xdao.co/idpack/registry"
	"xdao.co/idpack/rolehash"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "id":
		return cmdID(args[1:], out, errOut)
	case "product-id":
		return cmdProductID(args[1:], out, errOut)
	case "name":
		return cmdName(args[1:], out, errOut)
	case "digest":
		return cmdDigest(args[1:], out, errOut)
	case "payload":
		return cmdPayload(args[1:], out, errOut)
	case "role":
		return cmdRole(args[1:], out, errOut)
	case "registry":
		return cmdRegistry(args[1:], out, errOut)
	case "chain":
		return cmdChain(args[1:], out, errOut)
	case "profiles":
		for _, name := range ident.Profiles() {
			fmt.Fprintln(out, name)
		}
		return 0
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "idpack: identifier and payload codec CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  idpack id encode --name <n> --index <i> --token <addr> --product <addr> [--profile <p>] [--decimal]")
	fmt.Fprintln(w, "  idpack id decode [--profile <p>] <id>")
	fmt.Fprintln(w, "  idpack product-id encode --name <n> --token <addr> --product <addr>")
	fmt.Fprintln(w, "  idpack product-id verify --id <id> --name <n> --token <addr> --product <addr>")
	fmt.Fprintln(w, "  idpack name <name>")
	fmt.Fprintln(w, "  idpack digest [--text | --hex] <value>")
	fmt.Fprintln(w, "  idpack payload encode [--kind crypto|bank|legacy] --name <n> --index <i> --token <addr> --product <addr> [--autoswap | --account <addr>]")
	fmt.Fprintln(w, "  idpack payload decode [--kind crypto|bank|legacy] <hex>")
	fmt.Fprintln(w, "  idpack payload cid <hex>")
	fmt.Fprintln(w, "  idpack role hash --address <addr> --name <n>")
	fmt.Fprintln(w, "  idpack role key <key>")
	fmt.Fprintln(w, "  idpack role value --name <n> --index <i> --address <addr>")
	fmt.Fprintln(w, "  idpack role recover <hex32>")
	fmt.Fprintln(w, "  idpack registry put --dir <dir> --key <k> --name <n> --index <i> --address <addr>")
	fmt.Fprintln(w, "  idpack registry get --dir <dir> <key>")
	fmt.Fprintln(w, "  idpack chain impl --rpc <url> <proxy>")
	fmt.Fprintln(w, "  idpack chain revert --rpc <url> <txhash>")
	fmt.Fprintln(w, "  idpack profiles")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - ids are printed as 0x-prefixed 32-byte hex; decode accepts hex or decimal")
	fmt.Fprintln(w, "  - digest sniffs 0x literals as hex unless --text or --hex is given")
	fmt.Fprintln(w, "  - product-id verify exits 1 when the id does not match")
	fmt.Fprintln(w, "  - errors print their rule id, e.g. [IDP-ADDR-101]")
}

func newFlagSet(name string, errOut io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(errOut)
	return fs
}

// parse returns -1 to continue, or the exit code to return.
func parse(fs *pflag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	return -1
}

func fail(errOut io.Writer, what string, err error) int {
	if rule := codec.RuleID(err); rule != "" {
		fmt.Fprintf(errOut, "%s: [%s] %v\n", what, rule, err)
	} else {
		fmt.Fprintf(errOut, "%s: %v\n", what, err)
	}
	return 1
}

func writeJSON(out io.Writer, v any) int {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return 1
	}
	return 0
}

type decodedID struct {
	Profile string  `json:"profile"`
	Name    string  `json:"name"`
	Index   *uint16 `json:"index,omitempty"`
	Token   string  `json:"token"`
	Product string  `json:"product"`
}

func newDecodedID(p ident.Profile, d ident.Decoded) decodedID {
	out := decodedID{Profile: p.Name, Name: d.Name, Token: d.Token.Hex(), Product: d.Product.Hex()}
	if p.Indexed {
		index := d.Index
		out.Index = &index
	}
	return out
}

func cmdID(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: idpack id <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: encode, decode")
		return 2
	}
	switch args[0] {
	case "encode":
		fs := newFlagSet("id encode", errOut)
		var f ident.Fields
		var profile string
		var decimal bool
		fs.StringVar(&f.Name, "name", "", "Name (up to 10 bytes are kept)")
		fs.IntVar(&f.Index, "index", 0, "Index (0..65535)")
		fs.StringVar(&f.Token, "token", "", "Token address")
		fs.StringVar(&f.Product, "product", "", "Product address")
		fs.StringVar(&profile, "profile", ident.ProfileIndexed.Name, "Identifier profile")
		fs.BoolVar(&decimal, "decimal", false, "Print the id as a decimal integer")
		if code := parse(fs, args[1:]); code >= 0 {
			return code
		}
		if f.Token == "" || f.Product == "" {
			fmt.Fprintln(errOut, "usage: idpack id encode --name <n> --index <i> --token <addr> --product <addr> [--profile <p>] [--decimal]")
			return 2
		}
		p, err := ident.ProfileByName(profile)
		if err != nil {
			return fail(errOut, "id encode", err)
		}
		id, err := p.Encode(f)
		if err != nil {
			return fail(errOut, "id encode", err)
		}
		if decimal {
			fmt.Fprintln(out, id.Big().String())
		} else {
			fmt.Fprintln(out, id.Hex())
		}
		return 0
	case "decode":
		fs := newFlagSet("id decode", errOut)
		var profile string
		fs.StringVar(&profile, "profile", ident.ProfileIndexed.Name, "Identifier profile")
		if code := parse(fs, args[1:]); code >= 0 {
			return code
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: idpack id decode [--profile <p>] <id>")
			return 2
		}
		p, err := ident.ProfileByName(profile)
		if err != nil {
			return fail(errOut, "id decode", err)
		}
		id, err := ident.ParseID(fs.Arg(0))
		if err != nil {
			return fail(errOut, "id decode", err)
		}
		return writeJSON(out, newDecodedID(p, p.Decode(id)))
	default:
		fmt.Fprintf(errOut, "unknown id subcommand: %s\n", args[0])
		return 2
	}
}

func cmdProductID(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: idpack product-id <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: encode, verify")
		return 2
	}
	var name, token, product, id string
	fs := newFlagSet("product-id "+args[0], errOut)
	fs.StringVar(&name, "name", "", "Product name")
	fs.StringVar(&token, "token", "", "Token address")
	fs.StringVar(&product, "product", "", "Product address")
	switch args[0] {
	case "encode":
		if code := parse(fs, args[1:]); code >= 0 {
			return code
		}
		if token == "" || product == "" {
			fmt.Fprintln(errOut, "usage: idpack product-id encode --name <n> --token <addr> --product <addr>")
			return 2
		}
		got, err := ident.GetProductID(name, token, product)
		if err != nil {
			return fail(errOut, "product-id encode", err)
		}
		fmt.Fprintln(out, got.Hex())
		return 0
	case "verify":
		fs.StringVar(&id, "id", "", "Product id (hex or decimal)")
		if code := parse(fs, args[1:]); code >= 0 {
			return code
		}
		if id == "" || token == "" || product == "" {
			fmt.Fprintln(errOut, "usage: idpack product-id verify --id <id> --name <n> --token <addr> --product <addr>")
			return 2
		}
		parsed, err := ident.ParseID(id)
		if err != nil {
			return fail(errOut, "product-id verify", err)
		}
		ok, err := ident.VerifyProductID(parsed, name, token, product)
		if err != nil {
			return fail(errOut, "product-id verify", err)
		}
		fmt.Fprintln(out, ok)
		if !ok {
			return 1
		}
		return 0
	default:
		fmt.Fprintf(errOut, "unknown product-id subcommand: %s\n", args[0])
		return 2
	}
}

func cmdName(args []string, out io.Writer, errOut io.Writer) int {
	fs := newFlagSet("name", errOut)
	if code := parse(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: idpack name <name>")
		return 2
	}
	b := ident.StringToBytes10OrHash(fs.Arg(0))
	fmt.Fprintln(out, hexutil.Encode(b[:]))
	return 0
}

func cmdDigest(args []string, out io.Writer, errOut io.Writer) int {
	fs := newFlagSet("digest", errOut)
	var asText, asHex bool
	fs.BoolVar(&asText, "text", false, "Hash the argument as UTF-8 text")
	fs.BoolVar(&asHex, "hex", false, "Hash the argument as hex bytes")
	if code := parse(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 || (asText && asHex) {
		fmt.Fprintln(errOut, "usage: idpack digest [--text | --hex] <value>")
		return 2
	}
	var (
		sum [32]byte
		err error
	)
	switch v := fs.Arg(0); {
	case asText:
		sum, err = codec.Digest(codec.Text(v))
	case asHex:
		sum, err = codec.Digest(codec.HexBytes(v))
	default:
		sum, err = codec.DigestString(v)
	}
	if err != nil {
		return fail(errOut, "digest", err)
	}
	fmt.Fprintln(out, hexutil.Encode(sum[:]))
	return 0
}

type decodedPayload struct {
	ID             string    `json:"id"`
	Fields         decodedID `json:"fields"`
	TokenAddress   string    `json:"tokenAddress"`
	ProductAddress string    `json:"productAddress"`
	Autoswap       *bool     `json:"autoswap,omitempty"`
	Account        string    `json:"account,omitempty"`
}

func cmdPayload(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: idpack payload <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: encode, decode, cid")
		return 2
	}
	switch args[0] {
	case "encode":
		fs := newFlagSet("payload encode", errOut)
		var kind, name, token, product, account string
		var index int
		var autoswap bool
		fs.StringVar(&kind, "kind", "crypto", "Payload kind: crypto, bank or legacy")
		fs.StringVar(&name, "name", "", "Name")
		fs.IntVar(&index, "index", 0, "Index (0..65535)")
		fs.StringVar(&token, "token", "", "Token address")
		fs.StringVar(&product, "product", "", "Product address")
		fs.BoolVar(&autoswap, "autoswap", false, "Autoswap flag (crypto)")
		fs.StringVar(&account, "account", "", "Account address (bank, legacy)")
		if code := parse(fs, args[1:]); code >= 0 {
			return code
		}
		var (
			b   []byte
			err error
		)
		switch kind {
		case "crypto":
			b, err = payload.EncodeCrypto(name, index, token, product, autoswap)
		case "bank":
			b, err = payload.EncodeBank(name, index, token, product, account)
		case "legacy":
			b, err = payload.EncodeLegacy(name, index, token, product, account)
		default:
			fmt.Fprintf(errOut, "unknown payload kind: %s\n", kind)
			return 2
		}
		if err != nil {
			return fail(errOut, "payload encode", err)
		}
		fmt.Fprintln(out, hexutil.Encode(b))
		return 0
	case "decode":
		fs := newFlagSet("payload decode", errOut)
		var kind string
		fs.StringVar(&kind, "kind", "crypto", "Payload kind: crypto, bank or legacy")
		if code := parse(fs, args[1:]); code >= 0 {
			return code
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: idpack payload decode [--kind crypto|bank|legacy] <hex>")
			return 2
		}
		data, err := hexutil.Decode(fs.Arg(0))
		if err != nil {
			return fail(errOut, "payload decode", err)
		}
		var res decodedPayload
		switch kind {
		case "crypto":
			c, err := payload.DecodeCrypto(data)
			if err != nil {
				return fail(errOut, "payload decode", err)
			}
			autoswap := c.Autoswap
			res = decodedPayload{ID: c.RawID.Hex(), Fields: newDecodedID(ident.ProfileIndexed, c.ID),
				TokenAddress: c.Token.Hex(), ProductAddress: c.Product.Hex(), Autoswap: &autoswap}
		case "bank", "legacy":
			decode := payload.DecodeBank
			if kind == "legacy" {
				decode = payload.DecodeLegacy
			}
			b, err := decode(data)
			if err != nil {
				return fail(errOut, "payload decode", err)
			}
			res = decodedPayload{ID: b.RawID.Hex(), Fields: newDecodedID(ident.ProfileIndexed, b.ID),
				TokenAddress: b.Token.Hex(), ProductAddress: b.Product.Hex(), Account: b.Account.Hex()}
		default:
			fmt.Fprintf(errOut, "unknown payload kind: %s\n", kind)
			return 2
		}
		return writeJSON(out, res)
	case "cid":
		fs := newFlagSet("payload cid", errOut)
		if code := parse(fs, args[1:]); code >= 0 {
			return code
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: idpack payload cid <hex>")
			return 2
		}
		data, err := hexutil.Decode(fs.Arg(0))
		if err != nil {
			return fail(errOut, "payload cid", err)
		}
		id, err := payload.CID(data)
		if err != nil {
			return fail(errOut, "payload cid", err)
		}
		fmt.Fprintln(out, id)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown payload subcommand: %s\n", args[0])
		return 2
	}
}

type entryJSON struct {
	Name    string `json:"name"`
	Index   uint16 `json:"index"`
	Address string `json:"address"`
}

func cmdRole(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: idpack role <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: hash, key, value, recover")
		return 2
	}
	switch args[0] {
	case "hash":
		fs := newFlagSet("role hash", errOut)
		var address, name string
		fs.StringVar(&address, "address", "", "Account address")
		fs.StringVar(&name, "name", "", "Role name")
		if code := parse(fs, args[1:]); code >= 0 {
			return code
		}
		if address == "" {
			fmt.Fprintln(errOut, "usage: idpack role hash --address <addr> --name <n>")
			return 2
		}
		h, err := rolehash.ToRoleHash(address, name)
		if err != nil {
			return fail(errOut, "role hash", err)
		}
		fmt.Fprintln(out, hexutil.Encode(h[:]))
		return 0
	case "key":
		fs := newFlagSet("role key", errOut)
		if code := parse(fs, args[1:]); code >= 0 {
			return code
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: idpack role key <key>")
			return 2
		}
		k, err := rolehash.ToBytes32Key(fs.Arg(0))
		if err != nil {
			return fail(errOut, "role key", err)
		}
		fmt.Fprintln(out, hexutil.Encode(k[:]))
		return 0
	case "value":
		fs := newFlagSet("role value", errOut)
		var name, address string
		var index int
		fs.StringVar(&name, "name", "", "Name")
		fs.IntVar(&index, "index", 0, "Index (0..65535)")
		fs.StringVar(&address, "address", "", "Address")
		if code := parse(fs, args[1:]); code >= 0 {
			return code
		}
		v, err := rolehash.ToBytes32Value(name, index, address)
		if err != nil {
			return fail(errOut, "role value", err)
		}
		fmt.Fprintln(out, hexutil.Encode(v[:]))
		return 0
	case "recover":
		fs := newFlagSet("role recover", errOut)
		if code := parse(fs, args[1:]); code >= 0 {
			return code
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: idpack role recover <hex32>")
			return 2
		}
		b, err := hexutil.Decode(fs.Arg(0))
		if err != nil || len(b) != codec.WordSize {
			fmt.Fprintln(errOut, "role recover: expected 0x-prefixed 32-byte hex")
			return 1
		}
		e := rolehash.RecoverOriginalValues(common.BytesToHash(b))
		return writeJSON(out, entryJSON{Name: e.Name, Index: e.Index, Address: e.Address})
	default:
		fmt.Fprintf(errOut, "unknown role subcommand: %s\n", args[0])
		return 2
	}
}

func cmdRegistry(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: idpack registry <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: put, get")
		return 2
	}
	var dir string
	fs := newFlagSet("registry "+args[0], errOut)
	fs.StringVar(&dir, "dir", "", "Registry directory")
	switch args[0] {
	case "put":
		var key, name, address string
		var index int
		fs.StringVar(&key, "key", "", "Registry key")
		fs.StringVar(&name, "name", "", "Name")
		fs.IntVar(&index, "index", 0, "Index (0..65535)")
		fs.StringVar(&address, "address", "", "Address")
		if code := parse(fs, args[1:]); code >= 0 {
			return code
		}
		if dir == "" || key == "" {
			fmt.Fprintln(errOut, "usage: idpack registry put --dir <dir> --key <k> --name <n> --index <i> --address <addr>")
			return 2
		}
		store, err := registry.NewLocalFS(dir)
		if err != nil {
			return fail(errOut, "registry put", err)
		}
		k, err := registry.Register(store, key, name, index, address)
		if err != nil {
			return fail(errOut, "registry put", err)
		}
		fmt.Fprintln(out, hexutil.Encode(k[:]))
		return 0
	case "get":
		if code := parse(fs, args[1:]); code >= 0 {
			return code
		}
		if dir == "" || fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: idpack registry get --dir <dir> <key>")
			return 2
		}
		store, err := registry.NewLocalFS(dir)
		if err != nil {
			return fail(errOut, "registry get", err)
		}
		e, err := registry.Lookup(store, fs.Arg(0))
		if err != nil {
			return fail(errOut, "registry get", err)
		}
		return writeJSON(out, entryJSON{Name: e.Name, Index: e.Index, Address: e.Address})
	default:
		fmt.Fprintf(errOut, "unknown registry subcommand: %s\n", args[0])
		return 2
	}
}

func cmdChain(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: idpack chain <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: impl, revert")
		return 2
	}
	var rpcURL string
	var timeout time.Duration
	fs := newFlagSet("chain "+args[0], errOut)
	fs.StringVar(&rpcURL, "rpc", os.Getenv("IDPACK_RPC_URL"), "Node JSON-RPC endpoint (default $IDPACK_RPC_URL)")
	fs.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	if code := parse(fs, args[1:]); code >= 0 {
		return code
	}
	if rpcURL == "" || fs.NArg() != 1 {
		fmt.Fprintf(errOut, "usage: idpack chain %s --rpc <url> <arg>\n", args[0])
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	switch args[0] {
	case "impl":
		proxy, err := codec.ParseAddress(fs.Arg(0))
		if err != nil {
			return fail(errOut, "chain impl", err)
		}
		client, err := chain.Dial(ctx, rpcURL)
		if err != nil {
			return fail(errOut, "chain impl", err)
		}
		defer client.Close()
		impl, err := chain.GetImplementationAddress(ctx, client, proxy)
		if err != nil {
			return fail(errOut, "chain impl", err)
		}
		fmt.Fprintln(out, impl.Hex())
		return 0
	case "revert":
		h := fs.Arg(0)
		if b, err := hexutil.Decode(h); err != nil || len(b) != common.HashLength {
			fmt.Fprintln(errOut, "chain revert: expected 0x-prefixed 32-byte transaction hash")
			return 2
		}
		client, err := chain.Dial(ctx, rpcURL)
		if err != nil {
			return fail(errOut, "chain revert", err)
		}
		defer client.Close()
		reason, err := chain.GetRevertReason(ctx, client, common.HexToHash(h))
		if err != nil {
			return fail(errOut, "chain revert", err)
		}
		fmt.Fprintln(out, strings.TrimSpace(reason))
		return 0
	default:
		fmt.Fprintf(errOut, "unknown chain subcommand: %s\n", args[0])
		return 2
	}
}
