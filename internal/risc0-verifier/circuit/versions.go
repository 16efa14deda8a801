package circuit

const (
	// MinCyclesPo2 is the smallest segment trace supported by any release
	MinCyclesPo2 = 13

	// SegmentMaxPo2 is the largest segment trace any release can prove
	SegmentMaxPo2 = 24

	// RecursionPo2 is the fixed trace size of the recursion circuit
	RecursionPo2 = 10

	// SegmentOutputSize is the global output width of the RV32IM circuits
	SegmentOutputSize = 76

	// RecursionOutputSize is the global output width of the recursion circuits
	RecursionOutputSize = 32

	// SegmentSealVersion is the leading seal word of v2 and later segment seals
	SegmentSealVersion = 1

	segmentQueries   = 32
	recursionQueries = 32
)

func segment(info string, sealVersion uint32) *Def {
	return &Def{
		Kind:        KindSegment,
		Info:        MustProtocolInfo(info),
		OutputSize:  SegmentOutputSize,
		MinPo2:      MinCyclesPo2,
		MaxPo2:      SegmentMaxPo2,
		Queries:     segmentQueries,
		SealVersion: sealVersion,
	}
}

func recursion(info string) *Def {
	return &Def{
		Kind:       KindRecursion,
		Info:       MustProtocolInfo(info),
		OutputSize: RecursionOutputSize,
		MinPo2:     RecursionPo2,
		MaxPo2:     RecursionPo2,
		Queries:    recursionQueries,
	}
}

// Circuit definitions per prover release
var (
	SegmentV1_0 = segment("RV32IM:rev1v0___", 0)
	SegmentV1_1 = segment("RV32IM:rev1v1___", 0)
	SegmentV1_2 = segment("RV32IM:rev1v2___", 0)
	SegmentV2_0 = segment("RV32IM:rev2v0___", SegmentSealVersion)
	SegmentV2_1 = segment("RV32IM:rev2v1___", SegmentSealVersion)
	SegmentV2_2 = segment("RV32IM:rev2v2___", SegmentSealVersion)
	SegmentV3_0 = segment("RV32IM:rev3v0___", SegmentSealVersion)

	RecursionV1_0 = recursion("RECURSION:rev1v0")
	RecursionV1_1 = recursion("RECURSION:rev1v1")
	RecursionV1_2 = recursion("RECURSION:rev1v2")
	RecursionV2_0 = recursion("RECURSION:rev2v0")
	RecursionV2_1 = recursion("RECURSION:rev2v1")
	RecursionV2_2 = recursion("RECURSION:rev2v2")
	RecursionV3_0 = recursion("RECURSION:rev3v0")
)
