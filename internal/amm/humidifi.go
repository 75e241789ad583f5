package amm

import "github.com/franco-bianco/sandwichgo/internal/addresses"

var humidiFiSwapDiscriminant = []byte{0xff, 0x2d, 0xff, 0xe0, 0xba, 0xe9, 0xc3, 0x3d}

// humidiFiFinder decodes HumidiFi's single swap instruction. HumidiFi has
// no published IDL; the account roles and direction byte below come from
// sampling Solscan/Jupiter transactions rather than an on-chain schema. The
// direction byte at [16] must be exactly 0x38 (base->quote) or 0x39
// (quote->base); any other value drops the call rather than guessing,
// better to drop a call than guess at calldata reverse-engineered from
// samples.
func humidiFiFinder() Finder {
	return GenericFinder{
		Program:  addresses.HumidiFi,
		Variants: []Variant{{Discriminant: humidiFiSwapDiscriminant, Offset: 17, MinDataLen: 25}},
		Resolve: func(data []byte) (AccountMap, bool) {
			if len(data) <= 16 {
				return AccountMap{}, false
			}
			switch data[16] {
			case 0x38: // base -> quote
				return AccountMap{AMM: 1, UserIn: 4, UserOut: 5, PoolIn: 3, PoolOut: 2}, true
			case 0x39: // quote -> base
				return AccountMap{AMM: 1, UserIn: 5, UserOut: 4, PoolIn: 2, PoolOut: 3}, true
			default:
				return AccountMap{}, false
			}
		},
	}
}
