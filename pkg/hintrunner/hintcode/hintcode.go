// Package hintcode names the hint-body identifiers a compiled
// program's "code" field selects, mirroring the literal snippets the
// Cairo compiler embeds for each standard library hint.
package hintcode

const (
	AddSegmentCode          = "memory[ap] = segments.add()"
	IsNNCode                = "memory[ap] = 0 if 0 <= (ids.a % PRIME) < range_check_builtin.bound else 1"
	IsNNOutOfRangeCode      = "memory[ap] = 0 if 0 <= ((-ids.a - 1) % PRIME) < range_check_builtin.bound else 1"
	AssertLEFeltCode        = "assert (ids.a % PRIME) <= (ids.b % PRIME)"
	IsLEFeltCode            = "memory[ap] = 0 if (ids.a % PRIME) <= (ids.b % PRIME) else 1"
	AssertNotEqualCode      = "assert ids.a != ids.b"
	AssertNNCode            = "assert 0 <= ids.a % PRIME < range_check_builtin.bound"
	AssertNotZeroCode       = "assert ids.value % PRIME != 0"
	SplitIntAssertRangeCode = "assert ids.value == 0"
	SplitIntCode            = "ids.res = ids.value % ids.base"
	IsPositiveCode          = "ids.is_positive = 1 if ids.value % PRIME >= 0 else 0"
	SplitFeltCode           = "ids.low = ids.value & ((1 << 128) - 1); ids.high = ids.value >> 128"
	SqrtCode                = "ids.root = isqrt(ids.value)"
	UnsignedDivRemCode      = "ids.q, ids.r = divmod(ids.value, ids.div)"
	SignedDivRemCode        = "ids.biased_q, ids.r = divmod(ids.value, ids.div)\nids.biased_q += ids.bound"
	Assert250BitCode        = "ids.high, ids.low = divmod(ids.value, 2 ** 128)"
	AssertLtFeltCode        = "assert (ids.a % PRIME) < (ids.b % PRIME)"
)
