package systems

import (
	"container/list"
	"fmt"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/spaghettifunk/anima/engine/renderer/shadergen"
)

/** @brief Configuration for the program system. */
type ProgramSystemConfig struct {
	/** @brief How many unreferenced programs are kept for reuse before the least recently released is deleted. */
	MaxIdlePrograms int
}

/** @brief Counters describing the program cache. */
type ProgramStats struct {
	Hits   uint64
	Misses uint64
	/** @brief Programs referenced by at least one object. */
	Live int
	/** @brief Unreferenced programs waiting in the idle pool. */
	Idle int
}

type programEntry struct {
	program *metadata.Program
	sources *shadergen.Sources
	refs    int
	// idle is set while the entry sits in the idle pool.
	idle *list.Element
}

/**
 * @brief Caches shader programs by object hash. Programs are shared by every
 * object with the same hash and counted; released programs wait in an idle
 * pool so that a later object with the same hash can reuse them.
 */
type ProgramSystem struct {
	Config *ProgramSystemConfig

	device   renderer.Device
	compiler shadergen.Compiler
	ids      *core.IDAllocator
	entries  map[string]*programEntry
	// front is the most recently released program
	idle *list.List

	hits   uint64
	misses uint64
}

func NewProgramSystem(config *ProgramSystemConfig, device renderer.Device, compiler shadergen.Compiler) (*ProgramSystem, error) {
	if config.MaxIdlePrograms < 0 {
		err := fmt.Errorf("NewProgramSystem - config.MaxIdlePrograms must not be negative: %w", core.ErrConfig)
		core.LogError("%s", err)
		return nil, err
	}
	if compiler == nil {
		compiler = shadergen.NewNagaCompiler()
	}
	return &ProgramSystem{
		Config:   config,
		device:   device,
		compiler: compiler,
		ids:      core.NewIDAllocator(config.MaxIdlePrograms),
		entries:  make(map[string]*programEntry),
		idle:     list.New(),
	}, nil
}

/**
 * @brief Acquires the program for hash, generating and compiling it from rc
 * on a miss. Every call takes a reference, also when the program is faulty:
 * the caller releases it with Put either way.
 *
 * @param hash The object hash the program is shared under.
 * @param rc The state the program is generated from on a miss.
 * @return The program and an error wrapping core.ErrShaderCompile when any variant failed.
 */
func (ps *ProgramSystem) Get(hash string, rc *metadata.RenderContext) (*metadata.Program, error) {
	entry, ok := ps.entries[hash]
	if ok {
		ps.hits++
		if entry.idle != nil {
			ps.idle.Remove(entry.idle)
			entry.idle = nil
		}
	} else {
		ps.misses++
		entry = &programEntry{program: &metadata.Program{Hash: hash}}
		entry.program.ID = ps.ids.Acquire(entry)
		ps.entries[hash] = entry

		label := fmt.Sprintf("program %d", entry.program.ID)
		sources, err := shadergen.GenerateAll(label, rc)
		if err != nil {
			// keep the failure cached, the same hash will fail the same way
			sources = &shadergen.Sources{}
			entry.program.Draw = &metadata.GPUProgram{Kind: metadata.ProgramKindDraw, Label: label, ErrorLog: []string{err.Error()}}
			entry.program.PickObject = &metadata.GPUProgram{Kind: metadata.ProgramKindPickObject, Label: label}
			entry.program.PickPrimitive = &metadata.GPUProgram{Kind: metadata.ProgramKindPickPrimitive, Label: label}
		} else {
			entry.program.Draw = &metadata.GPUProgram{Kind: metadata.ProgramKindDraw, Label: label}
			entry.program.PickObject = &metadata.GPUProgram{Kind: metadata.ProgramKindPickObject, Label: label}
			entry.program.PickPrimitive = &metadata.GPUProgram{Kind: metadata.ProgramKindPickPrimitive, Label: label}
			ps.allocate(entry.program, sources)
		}
		entry.sources = sources
		core.LogDebug("program %d created for hash %q", entry.program.ID, hash)
	}
	entry.refs++

	if !entry.program.Valid() {
		return entry.program, fmt.Errorf("program %d: %w", entry.program.ID, core.ErrShaderCompile)
	}
	return entry.program, nil
}

// allocate compiles every variant of p and creates it on the device. Flags
// and handles are updated in place.
func (ps *ProgramSystem) allocate(p *metadata.Program, sources *shadergen.Sources) {
	for _, v := range p.Variants() {
		v.Source = sources.Source(v.Kind)
		v.Code = nil
		v.Handle = 0
		v.Allocated, v.Compiled, v.Linked, v.Validated = false, false, false, false
		v.ErrorLog = nil

		code, err := ps.compiler.Compile(fmt.Sprintf("%s %s", v.Label, v.Kind), v.Source)
		if err != nil {
			v.ErrorLog = append(v.ErrorLog, err.Error())
			core.LogError("program %d %s failed to compile: %s", p.ID, v.Kind, err)
			continue
		}
		v.Code = code
		v.Compiled = true

		handle, err := ps.device.CreateProgram(renderer.ProgramDesc{
			Kind:     v.Kind,
			Label:    v.Label,
			Source:   v.Source,
			Code:     code,
			Features: sources.Features,
		})
		if err != nil {
			v.ErrorLog = append(v.ErrorLog, err.Error())
			core.LogError("program %d %s failed to link: %s", p.ID, v.Kind, err)
			continue
		}
		v.Handle = handle
		v.Allocated, v.Linked, v.Validated = true, true, true
	}
}

/**
 * @brief Releases one reference to p. At zero references the program joins
 * the idle pool; the pool deletes its oldest programs once it is full.
 */
func (ps *ProgramSystem) Put(p *metadata.Program) error {
	if p == nil {
		return nil
	}
	entry, ok := ps.entries[p.Hash]
	if !ok || entry.program != p || entry.refs == 0 {
		return fmt.Errorf("program %d put: %w", p.ID, core.ErrRefcountUnderflow)
	}
	entry.refs--
	if entry.refs == 0 {
		entry.idle = ps.idle.PushFront(entry)
		ps.trim()
	}
	return nil
}

// trim deletes idle programs beyond the pool size, least recently released first.
func (ps *ProgramSystem) trim() {
	for ps.idle.Len() > ps.Config.MaxIdlePrograms {
		entry := ps.idle.Remove(ps.idle.Back()).(*programEntry)
		entry.idle = nil
		ps.destroy(entry)
	}
}

func (ps *ProgramSystem) destroy(entry *programEntry) {
	for _, v := range entry.program.Variants() {
		if v != nil && v.Allocated {
			ps.device.DeleteProgram(v.Handle)
			v.Handle = 0
			v.Allocated = false
		}
	}
	if err := ps.ids.Release(entry.program.ID); err != nil {
		core.LogWarn("%s", err)
	}
	delete(ps.entries, entry.program.Hash)
	core.LogDebug("program %d deleted", entry.program.ID)
}

// RefCount returns the references held on p, or zero for unknown programs.
func (ps *ProgramSystem) RefCount(p *metadata.Program) int {
	if entry, ok := ps.entries[p.Hash]; ok && entry.program == p {
		return entry.refs
	}
	return 0
}

// Lookup returns the cached program for hash without taking a reference.
func (ps *ProgramSystem) Lookup(hash string) (*metadata.Program, bool) {
	entry, ok := ps.entries[hash]
	if !ok {
		return nil, false
	}
	return entry.program, true
}

func (ps *ProgramSystem) Stats() ProgramStats {
	stats := ProgramStats{Hits: ps.hits, Misses: ps.misses, Idle: ps.idle.Len()}
	for _, entry := range ps.entries {
		if entry.refs > 0 {
			stats.Live++
		}
	}
	return stats
}

/**
 * @brief Recompiles every cached program on a new device after the old one
 * lost its context. Programs keep their identity; only handles change.
 */
func (ps *ProgramSystem) Restore(device renderer.Device) {
	ps.device = device
	for _, entry := range ps.entries {
		if entry.sources.Draw == "" {
			// generation failed, nothing to recompile
			continue
		}
		ps.allocate(entry.program, entry.sources)
	}
	core.LogInfo("restored %d programs", len(ps.entries))
}

func (ps *ProgramSystem) Shutdown() error {
	for _, entry := range ps.entries {
		if entry.refs > 0 {
			core.LogWarn("program %d still referenced %d times at shutdown", entry.program.ID, entry.refs)
		}
		ps.destroy(entry)
	}
	ps.idle.Init()
	return nil
}
