package faucet

import (
	"math/big"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/params"
)

const (
	UnitEther = "eth"
	UnitWei   = "wei"
)

// FormatAmount renders an API amount for people. With UnitWei the amount is
// converted to ether; amounts that do not parse are shown verbatim.
func FormatAmount(amount Amount, unit, symbol string) string {
	text := strings.TrimSpace(amount.String())
	if strings.EqualFold(unit, UnitWei) {
		if wei, ok := new(big.Int).SetString(text, 10); ok {
			text = weiToEther(wei)
		}
	}
	if symbol == "" {
		return text
	}
	return text + " " + symbol
}

func weiToEther(wei *big.Int) string {
	ether := new(big.Rat).SetFrac(wei, big.NewInt(params.Ether))
	s := ether.FloatString(18)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// TransactionURL links to the transaction on a block explorer. Well formed
// 32 byte hashes are normalised to lower case hex.
func TransactionURL(explorer, hash string) string {
	if explorer == "" || hash == "" {
		return ""
	}
	if b, err := hexutil.Decode(hash); err == nil && len(b) == common.HashLength {
		hash = common.BytesToHash(b).Hex()
	}
	return strings.TrimRight(explorer, "/") + "/tx/" + url.PathEscape(hash)
}

// LooksLikeAddress reports whether address is a hex encoded account address.
// It is informational only, submissions are never rejected on it.
func LooksLikeAddress(address string) bool {
	return common.IsHexAddress(address)
}
