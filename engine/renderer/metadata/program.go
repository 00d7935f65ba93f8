package metadata

import "fmt"

/** @brief The three shader variants every program carries. */
type ProgramKind int

const (
	ProgramKindDraw ProgramKind = iota
	ProgramKindPickObject
	ProgramKindPickPrimitive
)

func (k ProgramKind) String() string {
	switch k {
	case ProgramKindDraw:
		return "draw"
	case ProgramKindPickObject:
		return "pickObject"
	case ProgramKindPickPrimitive:
		return "pickPrimitive"
	default:
		return fmt.Sprintf("ProgramKind(%d)", int(k))
	}
}

/**
 * @brief One compiled and linked shader module on the device.
 */
type GPUProgram struct {
	Kind  ProgramKind
	Label string
	/** @brief The WGSL source the module was generated from. */
	Source string
	/** @brief SPIR-V words produced by the compiler. */
	Code   []uint32
	Handle ProgramHandle

	Allocated bool
	Compiled  bool
	Linked    bool
	Validated bool
	ErrorLog  []string
}

func (p *GPUProgram) Valid() bool {
	return p != nil && p.Allocated && p.Compiled && p.Linked && p.Validated
}

/**
 * @brief A shader program shared by all objects whose state hashes are
 * equal. Owned by the program system, which tracks its references.
 */
type Program struct {
	/** @brief Small reusable id, part of chunk ids and sort keys. */
	ID            uint32
	Hash          string
	Draw          *GPUProgram
	PickObject    *GPUProgram
	PickPrimitive *GPUProgram
}

func (p *Program) Variants() [3]*GPUProgram {
	return [3]*GPUProgram{p.Draw, p.PickObject, p.PickPrimitive}
}

func (p *Program) Variant(kind ProgramKind) *GPUProgram {
	switch kind {
	case ProgramKindPickObject:
		return p.PickObject
	case ProgramKindPickPrimitive:
		return p.PickPrimitive
	default:
		return p.Draw
	}
}

// Valid reports whether every variant was allocated, compiled, linked and validated.
func (p *Program) Valid() bool {
	for _, v := range p.Variants() {
		if !v.Valid() {
			return false
		}
	}
	return true
}

// ErrorLog collects the error logs of all variants, prefixed by variant kind.
func (p *Program) ErrorLog() []string {
	var log []string
	for _, v := range p.Variants() {
		if v == nil {
			continue
		}
		for _, line := range v.ErrorLog {
			log = append(log, fmt.Sprintf("%s: %s", v.Kind, line))
		}
	}
	return log
}
