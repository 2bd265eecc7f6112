package vm

import (
	"fmt"
	"math/big"

	f "github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

type Register uint8

const (
	Ap Register = iota
	Fp
)

type Op1Src uint8

const (
	Op0 Op1Src = iota
	Imm
	FpPlusOffOp1
	ApPlusOffOp1
)

type ResLogic uint8

const (
	Op1 ResLogic = iota
	AddOperands
	MulOperands
	Unconstrained
)

type PcUpdate uint8

const (
	NextInstr PcUpdate = iota
	Jump
	JumpRel
	Jnz
)

type ApUpdate uint8

const (
	SameAp ApUpdate = iota
	AddImm
	Add1
	Add2
)

type FpUpdate uint8

const (
	SameFp FpUpdate = iota
	APPlus2
	Dst
)

type Opcode uint8

const (
	Nop Opcode = iota
	Call
	Ret
	AssertEq
)

// offsetBias recovers a signed 16-bit offset biased by 2^15 at encode
// time (spec §4.1: "subtracting 2^15 from its 16-bit unsigned value").
const offsetBias = 1 << 15

// Instruction is the decoded form of a single 64-bit Cairo instruction
// word, per spec §3/§4.1.
type Instruction struct {
	OffDest int16
	OffOp0  int16
	OffOp1  int16

	DstRegister Register
	Op0Register Register
	Op1Source   Op1Src

	Res ResLogic

	PcUpdate PcUpdate
	ApUpdate ApUpdate
	FpUpdate FpUpdate
	Opcode   Opcode
}

// Size returns 2 if the instruction carries an immediate (the next
// memory cell is the immediate value), 1 otherwise.
func (i *Instruction) Size() uint64 {
	if i.Op1Source == Imm {
		return 2
	}
	return 1
}

const (
	destRegBit    = 0
	op0RegBit     = 1
	op1SrcShift   = 2
	op1SrcMask    = 0b111
	resLogicShift = 5
	resLogicMask  = 0b11
	pcUpdateShift = 7
	pcUpdateMask  = 0b111
	apUpdateShift = 10
	apUpdateMask  = 0b11
	opcodeShift   = 12
	opcodeMask    = 0b111
)

// DecodeInstruction decodes a 64-bit encoded instruction word. Per
// spec §4.1 bit layout: off0 [0:16), off1 [16:32), off2 [32:48), flags
// [48:64). Each offset is biased by 2^15.
func DecodeInstruction(encoded *f.Element) (*Instruction, error) {
	word, err := feltToUint64(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding instruction: %w", err)
	}
	return decodeInstructionUint64(word)
}

func feltToUint64(encoded *f.Element) (uint64, error) {
	var regular big.Int
	encoded.BigInt(&regular)
	if !regular.IsUint64() {
		return 0, fmt.Errorf("instruction word %s does not fit in 64 bits", encoded.Text(10))
	}
	return regular.Uint64(), nil
}

func decodeInstructionUint64(word uint64) (*Instruction, error) {
	off0 := decodeOffset(uint16(word))
	off1 := decodeOffset(uint16(word >> 16))
	off2 := decodeOffset(uint16(word >> 32))
	flags := word >> 48

	if flags&(1<<15) != 0 {
		return nil, fmt.Errorf("invalid instruction: reserved bit 15 of flags is set")
	}

	dstReg := Register((flags >> destRegBit) & 1)
	op0Reg := Register((flags >> op0RegBit) & 1)

	op1SrcFlag := (flags >> op1SrcShift) & op1SrcMask
	op1Src, err := decodeOp1Src(op1SrcFlag)
	if err != nil {
		return nil, err
	}

	resLogicFlag := (flags >> resLogicShift) & resLogicMask
	pcUpdateFlag := (flags >> pcUpdateShift) & pcUpdateMask
	pcUpdate, err := decodePcUpdate(pcUpdateFlag)
	if err != nil {
		return nil, err
	}

	res, err := decodeRes(resLogicFlag, pcUpdate)
	if err != nil {
		return nil, err
	}

	apUpdateFlag := (flags >> apUpdateShift) & apUpdateMask
	apUpdate, err := decodeApUpdate(apUpdateFlag)
	if err != nil {
		return nil, err
	}

	opcodeFlag := (flags >> opcodeShift) & opcodeMask
	opcode, err := decodeOpcode(opcodeFlag)
	if err != nil {
		return nil, err
	}

	var fpUpdate FpUpdate
	switch opcode {
	case Call:
		fpUpdate = APPlus2
		if apUpdate == SameAp {
			apUpdate = Add2
		}
	case Ret:
		fpUpdate = Dst
	default:
		fpUpdate = SameFp
	}

	return &Instruction{
		OffDest:     off0,
		OffOp0:      off1,
		OffOp1:      off2,
		DstRegister: dstReg,
		Op0Register: op0Reg,
		Op1Source:   op1Src,
		Res:         res,
		PcUpdate:    pcUpdate,
		ApUpdate:    apUpdate,
		FpUpdate:    fpUpdate,
		Opcode:      opcode,
	}, nil
}

func decodeOffset(biased uint16) int16 {
	return int16(int32(biased) - offsetBias)
}

func decodeOp1Src(flag uint64) (Op1Src, error) {
	switch flag {
	case 0:
		return Op0, nil
	case 1:
		return Imm, nil
	case 2:
		return FpPlusOffOp1, nil
	case 4:
		return ApPlusOffOp1, nil
	default:
		return 0, fmt.Errorf("InvalidOp1Src(%d)", flag)
	}
}

func decodePcUpdate(flag uint64) (PcUpdate, error) {
	switch flag {
	case 0:
		return NextInstr, nil
	case 1:
		return Jump, nil
	case 2:
		return JumpRel, nil
	case 4:
		return Jnz, nil
	default:
		return 0, fmt.Errorf("InvalidPcUpdate(%d)", flag)
	}
}

func decodeRes(resLogicFlag uint64, pcUpdate PcUpdate) (ResLogic, error) {
	// Spec §3: res is UNCONSTRAINED only when pc_update = JNZ and
	// res_logic = 0.
	if pcUpdate == Jnz {
		if resLogicFlag == 0 {
			return Unconstrained, nil
		}
		return 0, fmt.Errorf("InvalidRes(%d)", resLogicFlag)
	}
	switch resLogicFlag {
	case 0:
		return Op1, nil
	case 1:
		return AddOperands, nil
	case 2:
		return MulOperands, nil
	default:
		return 0, fmt.Errorf("InvalidRes(%d)", resLogicFlag)
	}
}

func decodeApUpdate(flag uint64) (ApUpdate, error) {
	switch flag {
	case 0:
		return SameAp, nil
	case 1:
		return AddImm, nil
	case 2:
		return Add1, nil
	default:
		return 0, fmt.Errorf("InvalidApUpdate(%d)", flag)
	}
}

func decodeOpcode(flag uint64) (Opcode, error) {
	switch flag {
	case 0:
		return Nop, nil
	case 1:
		return Call, nil
	case 2:
		return Ret, nil
	case 4:
		return AssertEq, nil
	default:
		return 0, fmt.Errorf("InvalidOpcode(%d)", flag)
	}
}

// Encode re-encodes the instruction into a 64-bit word. Used only by
// tests to check the decode/encode round-trip property (spec §8).
func (i *Instruction) Encode() uint64 {
	word := uint64(uint16(int32(i.OffDest) + offsetBias))
	word |= uint64(uint16(int32(i.OffOp0)+offsetBias)) << 16
	word |= uint64(uint16(int32(i.OffOp1)+offsetBias)) << 32

	var flags uint64
	flags |= uint64(i.DstRegister) << destRegBit
	flags |= uint64(i.Op0Register) << op0RegBit
	flags |= uint64(encodeOp1Src(i.Op1Source)) << op1SrcShift
	flags |= uint64(encodeRes(i.Res)) << resLogicShift
	flags |= uint64(encodePcUpdate(i.PcUpdate)) << pcUpdateShift
	flags |= uint64(encodeApUpdate(i.ApUpdate, i.Opcode)) << apUpdateShift
	flags |= uint64(encodeOpcode(i.Opcode)) << opcodeShift

	return word | (flags << 48)
}

func encodeOp1Src(v Op1Src) uint64 {
	switch v {
	case Op0:
		return 0
	case Imm:
		return 1
	case FpPlusOffOp1:
		return 2
	case ApPlusOffOp1:
		return 4
	}
	return 0
}

func encodeRes(v ResLogic) uint64 {
	switch v {
	case Op1, Unconstrained:
		return 0
	case AddOperands:
		return 1
	case MulOperands:
		return 2
	}
	return 0
}

func encodePcUpdate(v PcUpdate) uint64 {
	switch v {
	case NextInstr:
		return 0
	case Jump:
		return 1
	case JumpRel:
		return 2
	case Jnz:
		return 4
	}
	return 0
}

// encodeApUpdate undoes the CALL+SameAp->Add2 promotion applied during
// decode: ADD2 is never itself an encoded value, it is only reachable
// via that promotion, so Call instructions round-trip back to flag 0.
func encodeApUpdate(v ApUpdate, opcode Opcode) uint64 {
	if opcode == Call && v == Add2 {
		return 0
	}
	switch v {
	case SameAp:
		return 0
	case AddImm:
		return 1
	case Add1:
		return 2
	}
	return 0
}

func encodeOpcode(v Opcode) uint64 {
	switch v {
	case Nop:
		return 0
	case Call:
		return 1
	case Ret:
		return 2
	case AssertEq:
		return 4
	}
	return 0
}
