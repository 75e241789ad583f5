// Package addresses is the static table of program ids the decode pipeline
// recognizes, plus the small set of classification predicates (known
// aggregator, "jitodontfront" range) that key off raw address bytes alone.
package addresses

import "github.com/gagliardetto/solana-go"

// AMM program ids. One constant per AMM swap finder in package amm.
var (
	RaydiumV4     = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	RaydiumV5     = solana.MustPublicKeyFromBase58("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C")
	RaydiumLP     = solana.MustPublicKeyFromBase58("LanMV9sAd7wArD4vJFi2qDdfnVhFxYSUg6eADduJ3uj")
	RaydiumCL     = solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")
	PumpFun       = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	PumpFun2      = solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")
	Whirlpool     = solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")
	MeteoraDLMM   = solana.MustPublicKeyFromBase58("LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo")
	Meteora       = solana.MustPublicKeyFromBase58("Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB")
	MeteoraDBC    = solana.MustPublicKeyFromBase58("dbcij3LWUppWqq96dh6gJWwBifmcGfLSB5D4DuSMaqN")
	MeteoraDAMMv2 = solana.MustPublicKeyFromBase58("cpamdpZCGKUy5JxQXB4dcpGPiikHawvSWAd6mEn1sGG")
	OpenBookV2    = solana.MustPublicKeyFromBase58("opnb2LAfJYbRMAHHvqjCwQxanZn7ReEHp1k81EohpZb")
	ZeroFi        = solana.MustPublicKeyFromBase58("ZERor4xhbUycZ6gb9ntrhqscUcZmAbQDjEAtCf4hbZY")
	JupOrderEng   = solana.MustPublicKeyFromBase58("61DFfeTKM7trxYcPQCM78bJ794ddZprZpAwAnLiwTpYH")
	PancakeSwap   = solana.MustPublicKeyFromBase58("HpNfyc2Saw7RKkQd8nEL4khUcuPhQ7WwY1B2qjx8jxFq")
	FluxBeam      = solana.MustPublicKeyFromBase58("FLUXubRmkEi2q6K3Y9kBPg9248ggaZVsoSFhtJHSrm1X")
	HumidiFi      = solana.MustPublicKeyFromBase58("9H6tua7jkLhdm3w8BvgpTn5LZNU7g4ZynDmCiNN3q6Rp")
	SarosDLMM     = solana.MustPublicKeyFromBase58("1qbkdrr3z4ryLA7pZykqxvxWPoeifcVKo6ZG9CfkvVE")
	SolFi         = solana.MustPublicKeyFromBase58("SoLFiHG9TfgtdUXUjWAxi3LtvYuFyDLVhBWxdMZxyCe")
	GoonFi        = solana.MustPublicKeyFromBase58("goonERTdGsjnkZqWuVjs73BZ3Pb9qoCUdBUL17BnS5j")
	Sugar         = solana.MustPublicKeyFromBase58("deus4Bvftd5QKcEkE5muQaWGWDoma8GrySvPFrBPjhS")
	TessV         = solana.MustPublicKeyFromBase58("TessVdML9pBGgG9yGks7o4HewRaXVAMuoVj4x83GLQH")
	SV2E          = solana.MustPublicKeyFromBase58("SV2EYYJyRz2YhfXwXnhNAevDEui5Q6yrfyo13WtupPF")
	LifinityV2    = solana.MustPublicKeyFromBase58("2wT8Yq49kHgDzXuPxZSaeLaH1qbmGXtEyPy64bL7aD3c")
	ApeSU         = solana.MustPublicKeyFromBase58("5FyWAoG8V6hxgY6XM9hZStNxSW4D6mkv8HmYrxuPPDhv")
	OneDex        = solana.MustPublicKeyFromBase58("DEXYosS6oEGvk8uCDayvwEZz4qEyDJRf9nFgYCaqPMTm")
	Aqua          = solana.MustPublicKeyFromBase58("AQU1FRd7papthgdrwPTTq5JacJh8YtwEXaBfKU3bTz45")
	StabbleWeight = solana.MustPublicKeyFromBase58("swapFpHZwjELNnjvThjajtiVmkz3yPQEHjLtka2fwHW")
	JupPerps      = solana.MustPublicKeyFromBase58("PERPHjGBqRHArX4DySjwM6UJHiR3sWAatqfdBS2qQJu")
	Dooar         = solana.MustPublicKeyFromBase58("Dooar9JkhdZ7J3LHN3A7YCuoGRUggXhQaG4kijfLGU2j")
	PumpUp        = solana.MustPublicKeyFromBase58("PdMDrKEMaX8q7CCJb7NvUCxerBCcsFUa4LjBEynTtEd")
	ClearPool     = solana.MustPublicKeyFromBase58("C1ear1po7kcLBZiiArGMXPhGnjRZ8KxkqQ8EEskzHWmc")
)

// System-level programs.
var (
	TokenProgram     = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	Token2022Program = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	SystemProgram    = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
	StakeProgram     = solana.MustPublicKeyFromBase58("Stake11111111111111111111111111111111111111")
	WrappedSOLMint   = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	VoteProgram      = solana.MustPublicKeyFromBase58("Vote111111111111111111111111111111111111111")
)

// Aggregator/wrapper program ids subject to the aggregator-exclusion rule
// in sandwich enumeration.
var (
	JupiterV6 = solana.MustPublicKeyFromBase58("JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4")
	JupiterV4 = solana.MustPublicKeyFromBase58("JUP4Fb2cqiRUcaTHdrPC8h2gNsA2ETXiPDD33WcGuJB")
	DFlow     = solana.MustPublicKeyFromBase58("DF1ow4tspfHX9JwWJsAb9epbkA8hmpSEAtxXy1V27QBH")
	OKXRouter = solana.MustPublicKeyFromBase58("6m2CDdhRgxpH3PFNs6mAKSLgHBgEKZNJjbFjrkHSFD4A")
)

// IsKnownAggregator reports whether id is one of the aggregator wrappers
// that must be excluded from sandwich-candidate wrapper identity.
func IsKnownAggregator(id solana.PublicKey) bool {
	return id.Equals(JupiterV6) || id.Equals(JupiterV4) || id.Equals(DFlow)
}

// dontFrontStart/End bound the "jitodontfront" reserved 32-byte lexical
// range; any account key whose bytes fall in [start, end) marks its
// transaction as DontFront.
var (
	dontFrontStart = [32]byte{10, 241, 195, 67, 33, 136, 202, 58, 99, 81, 53, 161, 58, 24, 149, 26, 206, 189, 41, 230, 172, 45, 174, 103, 255, 219, 6, 215, 64, 0, 0, 0}
	dontFrontEnd   = [32]byte{10, 241, 195, 67, 33, 136, 202, 58, 99, 82, 11, 83, 236, 186, 243, 27, 60, 23, 98, 46, 152, 130, 58, 175, 28, 197, 174, 53, 128, 0, 0, 0}
)

// InDontFrontRange reports whether key's raw bytes fall in the reserved
// "jitodontfront" interval [DONT_FRONT_START, DONT_FRONT_END).
func InDontFrontRange(key solana.PublicKey) bool {
	b := [32]byte(key)
	return bytesGTE(b, dontFrontStart) && bytesLT(b, dontFrontEnd)
}

func bytesGTE(a, b [32]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return true
}

func bytesLT(a, b [32]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
