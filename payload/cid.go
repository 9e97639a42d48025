package payload

import (
	"github.com/ipfs/go-cid"

	"xdao.co/idpack/cidutil"
)

// CID returns the content identifier of an encoded payload. The multihash
// digest is the keccak-256 hash a contract would compute over the same bytes.
func CID(data []byte) (cid.Cid, error) {
	return cidutil.CIDv1RawKeccak256CID(data)
}
