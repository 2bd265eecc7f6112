package memory

import (
	"fmt"
	"math/big"

	f "github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

var halfModulus = func() *big.Int {
	half := new(big.Int).Rsh(f.Modulus(), 1)
	return half
}()

// AsInt returns the spec's signed view of a field element:
// as_int(x) = x if x < P/2 else x - P.
func AsInt(val *f.Element) *big.Int {
	regular := new(big.Int)
	val.BigInt(regular)
	if regular.Cmp(halfModulus) > 0 {
		regular.Sub(regular, f.Modulus())
	}
	return regular
}

// Modulus returns the VM's prime field modulus P.
func Modulus() *big.Int {
	return f.Modulus()
}

// ReduceModP reduces an arbitrary-precision integer into [0, P),
// matching Python's `% PRIME` semantics for negative inputs too.
func ReduceModP(x *big.Int) *big.Int {
	return new(big.Int).Mod(x, f.Modulus())
}

// MemoryValue is the spec's MaybeRelocatable: a tagged union holding
// either a field element or a relocatable address, never both.
type MemoryValue struct {
	felt      f.Element
	address   MemoryAddress
	isAddress bool
	known     bool
}

func EmptyMemoryValueAsFelt() MemoryValue {
	return MemoryValue{known: false, isAddress: false}
}

func EmptyMemoryValueAsAddress() MemoryValue {
	return MemoryValue{known: false, isAddress: true}
}

// EmptyMemoryValueAs returns an unknown placeholder tagged the same
// way as isAddress, so a later Add/Sub/Mul/Div can pick the right arm
// of the arithmetic table before a value is actually known.
func EmptyMemoryValueAs(isAddress bool) MemoryValue {
	return MemoryValue{known: false, isAddress: isAddress}
}

func MemoryValueFromFieldElement(felt *f.Element) MemoryValue {
	return MemoryValue{felt: *felt, known: true}
}

func MemoryValueFromMemoryAddress(addr *MemoryAddress) MemoryValue {
	return MemoryValue{address: *addr, isAddress: true, known: true}
}

func MemoryValueFromSegmentAndOffset(segmentIndex uint64, offset uint64) MemoryValue {
	return MemoryValueFromMemoryAddress(&MemoryAddress{SegmentIndex: segmentIndex, Offset: offset})
}

// MemoryValueFromUint builds a felt-valued MemoryValue from any
// unsigned integer type.
func MemoryValueFromUint[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](val T) MemoryValue {
	var felt f.Element
	felt.SetUint64(uint64(val))
	return MemoryValueFromFieldElement(&felt)
}

// MemoryValueFromBigInt builds a felt-valued MemoryValue by reducing
// an arbitrary-precision integer modulo P.
func MemoryValueFromBigInt(val *big.Int) MemoryValue {
	var felt f.Element
	felt.SetBigInt(val)
	return MemoryValueFromFieldElement(&felt)
}

// MemoryValueFromInt builds a felt-valued MemoryValue from a signed
// integer, wrapping negative values modulo P.
func MemoryValueFromInt[T ~int | ~int8 | ~int16 | ~int32 | ~int64](val T) MemoryValue {
	var felt f.Element
	v := int64(val)
	if v >= 0 {
		felt.SetUint64(uint64(v))
	} else {
		felt.SetUint64(uint64(-v))
		felt.Neg(&felt)
	}
	return MemoryValueFromFieldElement(&felt)
}

func (mv *MemoryValue) Known() bool {
	return mv.known
}

func (mv *MemoryValue) IsAddress() bool {
	return mv.isAddress
}

func (mv *MemoryValue) IsZero() bool {
	return !mv.isAddress && mv.felt.IsZero()
}

func (mv *MemoryValue) Equal(other *MemoryValue) bool {
	if mv.isAddress != other.isAddress {
		return false
	}
	if mv.isAddress {
		return mv.address.Equal(&other.address)
	}
	return mv.felt.Equal(&other.felt)
}

func (mv *MemoryValue) ToFieldElement() (*f.Element, error) {
	if mv.isAddress {
		return nil, fmt.Errorf("memory value %s is an address, not a felt", mv)
	}
	return &mv.felt, nil
}

func (mv *MemoryValue) ToMemoryAddress() (*MemoryAddress, error) {
	if !mv.isAddress {
		return nil, fmt.Errorf("memory value %s is a felt, not an address", mv)
	}
	return &mv.address, nil
}

func (mv *MemoryValue) Uint64() (uint64, error) {
	felt, err := mv.ToFieldElement()
	if err != nil {
		return 0, err
	}
	var regular big.Int
	felt.BigInt(&regular)
	if !regular.IsUint64() {
		return 0, fmt.Errorf("felt %s does not fit in a uint64", felt.Text(10))
	}
	return regular.Uint64(), nil
}

func (mv *MemoryValue) String() string {
	if !mv.known {
		return "<unknown>"
	}
	if mv.isAddress {
		return mv.address.String()
	}
	return mv.felt.Text(10)
}

// Add implements spec's MaybeRelocatable addition table:
// Addr+Int and Int+Addr -> Addr, Int+Int -> Int, Addr+Addr is a TypeError.
func (mv *MemoryValue) Add(a, b *MemoryValue) error {
	switch {
	case !a.isAddress && !b.isAddress:
		var result f.Element
		result.Add(&a.felt, &b.felt)
		*mv = MemoryValueFromFieldElement(&result)
		return nil
	case a.isAddress && !b.isAddress:
		var addr MemoryAddress
		if err := addr.Add(&a.address, &b.felt); err != nil {
			return err
		}
		*mv = MemoryValueFromMemoryAddress(&addr)
		return nil
	case !a.isAddress && b.isAddress:
		var addr MemoryAddress
		if err := addr.Add(&b.address, &a.felt); err != nil {
			return err
		}
		*mv = MemoryValueFromMemoryAddress(&addr)
		return nil
	default:
		return fmt.Errorf("cannot add two addresses: %s + %s", a, b)
	}
}

// Sub implements spec's table: Int-Int -> Int, Addr-Int -> Addr,
// Addr-Addr (same segment) -> Int, Int-Addr is a TypeError.
func (mv *MemoryValue) Sub(a, b *MemoryValue) error {
	switch {
	case !a.isAddress && !b.isAddress:
		var result f.Element
		result.Sub(&a.felt, &b.felt)
		*mv = MemoryValueFromFieldElement(&result)
		return nil
	case a.isAddress && b.isAddress:
		diff, err := a.address.Sub(&b.address)
		if err != nil {
			return err
		}
		*mv = MemoryValueFromFieldElement(diff)
		return nil
	case a.isAddress && !b.isAddress:
		var neg f.Element
		neg.Neg(&b.felt)
		var addr MemoryAddress
		if err := addr.Add(&a.address, &neg); err != nil {
			return err
		}
		*mv = MemoryValueFromMemoryAddress(&addr)
		return nil
	default:
		return fmt.Errorf("cannot subtract an address from a felt: %s - %s", a, b)
	}
}

// Mul implements spec's table: only Int*Int is defined.
func (mv *MemoryValue) Mul(a, b *MemoryValue) error {
	if a.isAddress || b.isAddress {
		return fmt.Errorf("cannot multiply relocatable values: %s * %s", a, b)
	}
	var result f.Element
	result.Mul(&a.felt, &b.felt)
	*mv = MemoryValueFromFieldElement(&result)
	return nil
}

// Div implements felt division (a / b = a * b^-1 mod P); only defined
// between two felts.
func (mv *MemoryValue) Div(a, b *MemoryValue) error {
	if a.isAddress || b.isAddress {
		return fmt.Errorf("cannot divide relocatable values: %s / %s", a, b)
	}
	if b.felt.IsZero() {
		return fmt.Errorf("division by zero felt")
	}
	var result f.Element
	result.Div(&a.felt, &b.felt)
	*mv = MemoryValueFromFieldElement(&result)
	return nil
}
