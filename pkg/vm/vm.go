package vm

import (
	"fmt"

	safemath "github.com/NethermindEth/cairo-vm-go/pkg/safemath"
	mem "github.com/NethermindEth/cairo-vm-go/pkg/vm/memory"
)

const (
	ProgramSegment = iota
	ExecutionSegment
)

// Required by the VM to run hints.
//
// HintRunner is defined as an external component of the VM so any user
// could define its own, allowing the use of custom hints
type HintRunner interface {
	RunHint(vm *VirtualMachine) error
}

// Represents the current execution context of the vm
type Context struct {
	Pc mem.MemoryAddress
	Fp uint64
	Ap uint64
}

func (ctx *Context) String() string {
	return fmt.Sprintf(
		"Context {pc: %d:%d, fp: %d, ap: %d}",
		ctx.Pc.SegmentIndex,
		ctx.Pc.Offset,
		ctx.Fp,
		ctx.Ap,
	)
}

func (ctx *Context) AddressAp() mem.MemoryAddress {
	return mem.MemoryAddress{SegmentIndex: ExecutionSegment, Offset: ctx.Ap}
}

func (ctx *Context) AddressFp() mem.MemoryAddress {
	return mem.MemoryAddress{SegmentIndex: ExecutionSegment, Offset: ctx.Fp}
}

func (ctx *Context) AddressPc() mem.MemoryAddress {
	return mem.MemoryAddress{SegmentIndex: ctx.Pc.SegmentIndex, Offset: ctx.Pc.Offset}
}

// registerOffset returns the current value of whichever addressing
// register (ap or fp) an instruction names, the single place both
// dst- and op0-address resolution read from.
func (ctx *Context) registerOffset(reg Register) uint64 {
	if reg == Ap {
		return ctx.Ap
	}
	return ctx.Fp
}

// relocates pc, ap and fp to be their real address value
// that is, pc + 1, ap + executionSegmentOffset, fp + executionSegmentOffset
func (ctx *Context) Relocate(executionSegmentOffset uint64) Trace {
	return Trace{
		// todo(rodro): this should be improved upon
		Pc: ctx.Pc.Offset + 1,
		Ap: ctx.Ap + executionSegmentOffset,
		Fp: ctx.Fp + executionSegmentOffset,
	}
}

type Trace struct {
	Pc uint64
	Fp uint64
	Ap uint64
}

// VirtualMachineConfig holds the options a VirtualMachine is created with
type VirtualMachineConfig struct {
	// If true, the vm outputs the trace and the relocated memory at the end of execution
	ProofMode bool
}

type VirtualMachine struct {
	Context Context
	Memory  *mem.Memory
	Step    uint64
	Trace   []Context
	config  VirtualMachineConfig
	// instructions cache
	instructions map[uint64]*Instruction
}

// NewVirtualMachine creates a VM from an initial context and memory using a specified config.
func NewVirtualMachine(initialContext Context, memory *mem.Memory, config VirtualMachineConfig) (*VirtualMachine, error) {
	// Initialize the trace if necesary
	var trace []Context
	if config.ProofMode {
		trace = make([]Context, 0)
	}

	return &VirtualMachine{
		Context:      initialContext,
		Memory:       memory,
		Trace:        trace,
		config:       config,
		instructions: make(map[uint64]*Instruction),
	}, nil
}

func (vm *VirtualMachine) RunStep(hintRunner HintRunner) error {
	// hints attached to this pc run before the instruction is decoded
	// or executed, per the hint engine's contract
	if hintRunner != nil {
		if err := hintRunner.RunHint(vm); err != nil {
			return fmt.Errorf("running hint: %w", err)
		}
	}

	instruction, err := vm.fetchInstruction()
	if err != nil {
		return err
	}

	// store the trace before state change
	if vm.config.ProofMode {
		vm.Trace = append(vm.Trace, vm.Context)
	}

	if err := vm.RunInstruction(instruction); err != nil {
		return fmt.Errorf("running instruction: %w", err)
	}

	vm.Step++
	return nil
}

// fetchInstruction decodes the word at the current pc, caching the
// result so re-entering a pc (a loop body, a recursive call) never
// pays the decode cost twice.
func (vm *VirtualMachine) fetchInstruction() (*Instruction, error) {
	if instruction, ok := vm.instructions[vm.Context.Pc.Offset]; ok {
		return instruction, nil
	}

	memoryValue, err := vm.Memory.ReadFromAddress(&vm.Context.Pc)
	if err != nil {
		return nil, fmt.Errorf("reading instruction: %w", err)
	}

	word, err := memoryValue.ToFieldElement()
	if err != nil {
		return nil, fmt.Errorf("reading instruction: %w", err)
	}

	instruction, err := DecodeInstruction(word)
	if err != nil {
		return nil, fmt.Errorf("decoding instruction: %w", err)
	}
	vm.instructions[vm.Context.Pc.Offset] = instruction
	return instruction, nil
}

// operands bundles the three memory addresses an instruction's
// dst/op0/op1 resolve to, before their values are read, inferred, or
// written by the rest of the execution step.
type operands struct {
	dst, op0, op1 mem.MemoryAddress
}

func (vm *VirtualMachine) RunInstruction(instruction *Instruction) error {
	ops, err := vm.resolveOperands(instruction)
	if err != nil {
		return err
	}

	if err := vm.deduceCallOp0(instruction, &ops.op0); err != nil {
		return fmt.Errorf("deducing call op0: %w", err)
	}

	res, err := vm.inferOperand(instruction, &ops)
	if err != nil {
		return fmt.Errorf("res infer: %w", err)
	}
	if !res.Known() {
		res, err = vm.computeRes(instruction, &ops)
		if err != nil {
			return fmt.Errorf("compute res: %w", err)
		}
	}

	if err := vm.opcodeAssertions(instruction, &ops, &res); err != nil {
		return fmt.Errorf("opcode assertions: %w", err)
	}

	nextPc, err := vm.updatePc(instruction, &ops, &res)
	if err != nil {
		return fmt.Errorf("pc update: %w", err)
	}

	nextAp, nextFp, err := vm.updateApFp(instruction, &ops, &res)
	if err != nil {
		return fmt.Errorf("state update: %w", err)
	}

	vm.Context.Pc = nextPc
	vm.Context.Ap = nextAp
	vm.Context.Fp = nextFp

	return nil
}

// It returns the relocated execution trace, or an error when proof mode is off
func (vm *VirtualMachine) ExecutionTrace() ([]Trace, error) {
	if !vm.config.ProofMode {
		return nil, fmt.Errorf("proof mode is off")
	}

	return vm.relocateTrace(), nil
}

// resolveOperands computes dst, op0 and op1's addresses in sequence,
// since op1's addressing mode (Op0) may need op0's address to read
// through it.
func (vm *VirtualMachine) resolveOperands(instruction *Instruction) (operands, error) {
	dstAddr, err := vm.addressFromRegister(instruction.DstRegister, instruction.OffDest)
	if err != nil {
		return operands{}, fmt.Errorf("dst cell: %w", err)
	}

	op0Addr, err := vm.addressFromRegister(instruction.Op0Register, instruction.OffOp0)
	if err != nil {
		return operands{}, fmt.Errorf("op0 cell: %w", err)
	}

	op1Addr, err := vm.op1Address(instruction, &op0Addr)
	if err != nil {
		return operands{}, fmt.Errorf("op1 cell: %w", err)
	}

	return operands{dst: dstAddr, op0: op0Addr, op1: op1Addr}, nil
}

// addressFromRegister resolves `[reg + off]` in the execution segment,
// the addressing mode shared by dst and op0.
func (vm *VirtualMachine) addressFromRegister(reg Register, off int16) (mem.MemoryAddress, error) {
	base := vm.Context.registerOffset(reg)
	offset, isOverflow := safemath.SafeOffset(base, off)
	if isOverflow {
		return mem.UnknownValue, fmt.Errorf("offset overflow: %d + %d", base, off)
	}
	return mem.MemoryAddress{SegmentIndex: ExecutionSegment, Offset: offset}, nil
}

func (vm *VirtualMachine) op1Address(instruction *Instruction, op0Addr *mem.MemoryAddress) (mem.MemoryAddress, error) {
	var base mem.MemoryAddress
	switch instruction.Op1Source {
	case Op0:
		// in this case Op0 is being used as an address, and must be unwrapped
		op0Value, err := vm.Memory.ReadFromAddress(op0Addr)
		if err != nil {
			return mem.UnknownValue, fmt.Errorf("cannot read op0: %w", err)
		}

		op0Address, err := op0Value.ToMemoryAddress()
		if err != nil {
			return mem.UnknownValue, fmt.Errorf("op0 is not an address: %w", err)
		}
		base = *op0Address
	case Imm:
		base = vm.Context.AddressPc()
	case FpPlusOffOp1:
		base = vm.Context.AddressFp()
	case ApPlusOffOp1:
		base = vm.Context.AddressAp()
	}

	offset, isOverflow := safemath.SafeOffset(base.Offset, instruction.OffOp1)
	if isOverflow {
		return mem.UnknownValue, fmt.Errorf("offset overflow: %d + %d", base.Offset, instruction.OffOp1)
	}
	base.Offset = offset
	return base, nil
}

// deduceCallOp0 implements the CALL deduction: op0 is always the
// return address pc+size(I), regardless of what else is known. Writing
// it through Memory also enforces the "can't write return pc"
// assertion for free, since a conflicting previous write fails
// write-once.
func (vm *VirtualMachine) deduceCallOp0(instruction *Instruction, op0Addr *mem.MemoryAddress) error {
	if instruction.Opcode != Call {
		return nil
	}

	returnPc := mem.MemoryValueFromSegmentAndOffset(
		vm.Context.Pc.SegmentIndex,
		vm.Context.Pc.Offset+instruction.Size(),
	)
	return vm.Memory.WriteToAddress(op0Addr, &returnPc)
}

// when there is an assertion with a substraction or division like : x = y - z
// the compiler treats it as y = x + z. This means that the VM knows the
// dstCell value and either op0Cell xor op1Cell. This function infers the
// unknow operand as well as the `res` auxiliar value
func (vm *VirtualMachine) inferOperand(instruction *Instruction, ops *operands) (mem.MemoryValue, error) {
	if instruction.Opcode != AssertEq ||
		(instruction.Res != AddOperands && instruction.Res != MulOperands) {
		return mem.MemoryValue{}, nil
	}

	op0Value, err := vm.Memory.PeekFromAddress(&ops.op0)
	if err != nil {
		return mem.MemoryValue{}, fmt.Errorf("cannot read op0: %w", err)
	}
	op1Value, err := vm.Memory.PeekFromAddress(&ops.op1)
	if err != nil {
		return mem.MemoryValue{}, fmt.Errorf("cannot read op1: %w", err)
	}

	if op0Value.Known() && op1Value.Known() {
		return mem.MemoryValue{}, nil
	}

	dstValue, err := vm.Memory.PeekFromAddress(&ops.dst)
	if err != nil {
		return mem.MemoryValue{}, fmt.Errorf("cannot read dst: %w", err)
	}

	if !dstValue.Known() {
		return mem.MemoryValue{}, fmt.Errorf("dst cell is unknown")
	}

	var knownOpValue mem.MemoryValue
	var unknownOpAddr *mem.MemoryAddress
	if op0Value.Known() {
		knownOpValue = op0Value
		unknownOpAddr = &ops.op1
	} else {
		knownOpValue = op1Value
		unknownOpAddr = &ops.op0
	}

	var missingVal mem.MemoryValue
	if instruction.Res == AddOperands {
		missingVal = mem.EmptyMemoryValueAs(dstValue.IsAddress())
		err = missingVal.Sub(&dstValue, &knownOpValue)
	} else {
		missingVal = mem.EmptyMemoryValueAsFelt()
		err = missingVal.Div(&dstValue, &knownOpValue)
	}
	if err != nil {
		return mem.MemoryValue{}, err
	}

	if err = vm.Memory.WriteToAddress(unknownOpAddr, &missingVal); err != nil {
		return mem.MemoryValue{}, err
	}
	return dstValue, nil
}

func (vm *VirtualMachine) computeRes(instruction *Instruction, ops *operands) (mem.MemoryValue, error) {
	switch instruction.Res {
	case Unconstrained:
		return mem.MemoryValue{}, nil
	case Op1:
		return vm.Memory.ReadFromAddress(&ops.op1)
	default:
		op0, err := vm.Memory.ReadFromAddress(&ops.op0)
		if err != nil {
			return mem.MemoryValue{}, fmt.Errorf("cannot read op0: %w", err)
		}

		op1, err := vm.Memory.ReadFromAddress(&ops.op1)
		if err != nil {
			return mem.MemoryValue{}, fmt.Errorf("cannot read op1: %w", err)
		}

		res := mem.EmptyMemoryValueAs(op0.IsAddress() || op1.IsAddress())
		if instruction.Res == AddOperands {
			err = res.Add(&op0, &op1)
		} else if instruction.Res == MulOperands {
			err = res.Mul(&op0, &op1)
		} else {
			return mem.MemoryValue{}, fmt.Errorf("invalid res flag value: %d", instruction.Res)
		}
		return res, err
	}
}

func (vm *VirtualMachine) opcodeAssertions(instruction *Instruction, ops *operands, res *mem.MemoryValue) error {
	switch instruction.Opcode {
	case Call:
		// op0 (the return address at [ap+1]) was already written by
		// deduceCallOp0; only the saved fp at [ap] remains.
		fpAddr := vm.Context.AddressFp()
		fpMv := mem.MemoryValueFromMemoryAddress(&fpAddr)
		if err := vm.Memory.WriteToAddress(&ops.dst, &fpMv); err != nil {
			return err
		}
	case AssertEq:
		// assert that the calculated res is stored in dst
		if err := vm.Memory.WriteToAddress(&ops.dst, res); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VirtualMachine) updatePc(instruction *Instruction, ops *operands, res *mem.MemoryValue) (mem.MemoryAddress, error) {
	switch instruction.PcUpdate {
	case NextInstr:
		return mem.MemoryAddress{
			SegmentIndex: vm.Context.Pc.SegmentIndex,
			Offset:       vm.Context.Pc.Offset + instruction.Size(),
		}, nil
	case Jump:
		addr, err := res.ToMemoryAddress()
		if err != nil {
			return mem.UnknownValue, fmt.Errorf("absolute jump: %w", err)
		}
		return *addr, nil
	case JumpRel:
		val, err := res.ToFieldElement()
		if err != nil {
			return mem.UnknownValue, fmt.Errorf("relative jump: %w", err)
		}
		newPc := vm.Context.Pc
		err = newPc.Add(&newPc, val)
		return newPc, err
	case Jnz:
		destMv, err := vm.Memory.ReadFromAddress(&ops.dst)
		if err != nil {
			return mem.UnknownValue, err
		}

		dest, err := destMv.ToFieldElement()
		if err != nil {
			return mem.UnknownValue, err
		}

		if dest.IsZero() {
			return mem.MemoryAddress{
				SegmentIndex: vm.Context.Pc.SegmentIndex,
				Offset:       vm.Context.Pc.Offset + instruction.Size(),
			}, nil
		}

		op1Mv, err := vm.Memory.ReadFromAddress(&ops.op1)
		if err != nil {
			return mem.UnknownValue, err
		}

		val, err := op1Mv.ToFieldElement()
		if err != nil {
			return mem.UnknownValue, err
		}

		newPc := vm.Context.Pc
		err = newPc.Add(&newPc, val)
		return newPc, err
	}
	return mem.UnknownValue, fmt.Errorf("unkwon pc update value: %d", instruction.PcUpdate)
}

// updateApFp resolves the next ap and fp together: fp's update depends
// on the opcode alone, while ap's depends on the ApUpdate flag, so
// computing them in one pass avoids threading `res`/`ops` through two
// near-identical signatures.
func (vm *VirtualMachine) updateApFp(instruction *Instruction, ops *operands, res *mem.MemoryValue) (ap uint64, fp uint64, err error) {
	switch instruction.Opcode {
	case Call:
		// [ap] and [ap + 1] are written to memory
		fp = vm.Context.Ap + 2
	case Ret:
		// [dst] should be a memory address of the form (executionSegment, fp - 2)
		destMv, rErr := vm.Memory.ReadFromAddress(&ops.dst)
		if rErr != nil {
			return 0, 0, rErr
		}
		dst, rErr := destMv.ToMemoryAddress()
		if rErr != nil {
			return 0, 0, fmt.Errorf("ret: %w", rErr)
		}
		fp = dst.Offset
	default:
		fp = vm.Context.Fp
	}

	switch instruction.ApUpdate {
	case SameAp:
		ap = vm.Context.Ap
	case AddImm:
		res64, rErr := res.Uint64()
		if rErr != nil {
			return 0, 0, rErr
		}
		ap = vm.Context.Ap + res64
	case Add1:
		ap = vm.Context.Ap + 1
	case Add2:
		ap = vm.Context.Ap + 2
	default:
		return 0, 0, fmt.Errorf("cannot update ap, unknown ApUpdate flag: %d", instruction.ApUpdate)
	}

	return ap, fp, nil
}

func (vm *VirtualMachine) relocateTrace() []Trace {
	// one is added, because prover expect that the first element to be on
	// indexed on 1 instead of 0
	relocatedTrace := make([]Trace, len(vm.Trace))
	totalBytecode := vm.Memory.Segments[ProgramSegment].Len() + 1
	for i := range vm.Trace {
		relocatedTrace[i] = vm.Trace[i].Relocate(totalBytecode)
	}
	return relocatedTrace
}
