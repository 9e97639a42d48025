package codec

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroAddress is the all-zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// ParseAddress validates s as a 20-byte hex address.
//
// The 0x prefix is optional. Inputs in a single case are accepted as-is;
// mixed-case inputs must carry a valid EIP-55 checksum.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, Errorf(KindAddress, "IDP-ADDR-001", "invalid address %q", s)
	}
	addr := common.HexToAddress(s)
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == strings.ToLower(digits) || digits == strings.ToUpper(digits) {
		return addr, nil
	}
	if addr.Hex()[2:] != digits {
		return common.Address{}, Errorf(KindAddress, "IDP-ADDR-002", "bad address checksum %q", s)
	}
	return addr, nil
}

// ChecksumAddress returns the EIP-55 form of s.
func ChecksumAddress(s string) (string, error) {
	addr, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return addr.Hex(), nil
}
