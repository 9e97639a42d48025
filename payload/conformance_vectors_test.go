package payload

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type payloadVectors struct {
	Crypto []struct {
		Name     string `json:"name"`
		Index    int    `json:"index"`
		Token    string `json:"token"`
		Product  string `json:"product"`
		Autoswap bool   `json:"autoswap"`
		Payload  string `json:"payload"`
	} `json:"cryptoPayloads"`
	Bank []struct {
		Name    string `json:"name"`
		Index   int    `json:"index"`
		Token   string `json:"token"`
		Product string `json:"product"`
		Account string `json:"account"`
		Payload string `json:"payload"`
	} `json:"bankPayloads"`
}

func loadPayloadVectors(t *testing.T) payloadVectors {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "testdata", "conformance", "idpack-1", "vectors.json"))
	if err != nil {
		t.Fatalf("read vectors: %v", err)
	}
	var v payloadVectors
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("parse vectors: %v", err)
	}
	if len(v.Crypto) == 0 || len(v.Bank) == 0 {
		t.Fatalf("empty vector set")
	}
	return v
}

func TestConformanceVectors_CryptoPayloads(t *testing.T) {
	for _, vec := range loadPayloadVectors(t).Crypto {
		got, err := EncodeCrypto(vec.Name, vec.Index, vec.Token, vec.Product, vec.Autoswap)
		if err != nil {
			t.Fatalf("EncodeCrypto(%q): %v", vec.Name, err)
		}
		if hexutil.Encode(got) != vec.Payload {
			t.Fatalf("EncodeCrypto(%q) =\n%x\nwant\n%s", vec.Name, got, vec.Payload)
		}
		c, err := DecodeCrypto(got)
		if err != nil {
			t.Fatalf("DecodeCrypto: %v", err)
		}
		if c.ID.Name != vec.Name || int(c.ID.Index) != vec.Index || c.Autoswap != vec.Autoswap {
			t.Fatalf("DecodeCrypto(%q) = %+v", vec.Name, c)
		}
		if !strings.EqualFold(c.Token.Hex(), vec.Token) || !strings.EqualFold(c.Product.Hex(), vec.Product) {
			t.Fatalf("DecodeCrypto(%q) addresses = %s %s", vec.Name, c.Token, c.Product)
		}
	}
}

func TestConformanceVectors_BankPayloads(t *testing.T) {
	for _, vec := range loadPayloadVectors(t).Bank {
		for _, encode := range []func(string, int, string, string, string) ([]byte, error){EncodeBank, EncodeLegacy} {
			got, err := encode(vec.Name, vec.Index, vec.Token, vec.Product, vec.Account)
			if err != nil {
				t.Fatalf("encode(%q): %v", vec.Name, err)
			}
			if hexutil.Encode(got) != vec.Payload {
				t.Fatalf("encode(%q) =\n%x\nwant\n%s", vec.Name, got, vec.Payload)
			}
		}
		b, err := DecodeBank(hexutil.MustDecode(vec.Payload))
		if err != nil {
			t.Fatalf("DecodeBank: %v", err)
		}
		if b.ID.Name != vec.Name || !strings.EqualFold(b.Account.Hex(), vec.Account) {
			t.Fatalf("DecodeBank(%q) = %+v", vec.Name, b)
		}
	}
}
