// Package mission drives mission runs through their checkpoint sequence.
// Enforced checkpoints dispatch straight to registered handlers; attestation
// checkpoints admit a proposal and hold the run until the blueprint decides
// it; branch checkpoints escalate watched proposals when an explicit limit
// (rounds, wait) is hit.
package mission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gatekit/gatekit/internal/clock"
	"github.com/gatekit/gatekit/internal/expander"
	"github.com/gatekit/gatekit/internal/idgen"
	model "github.com/gatekit/gatekit/model/mission"
	"github.com/gatekit/gatekit/model/proposal"
	"github.com/gatekit/gatekit/progress"
	"github.com/gatekit/gatekit/service/dao/store"
	"github.com/gatekit/gatekit/service/executor"
	"github.com/gatekit/gatekit/service/gate"
	"github.com/gatekit/gatekit/service/registry"
	"github.com/gatekit/gatekit/tracing"
)

// RunStatus is the lifecycle state of a mission run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunWaiting   RunStatus = "waiting"
	RunCompleted RunStatus = "completed"
	RunEscalated RunStatus = "escalated"
	RunFailed    RunStatus = "failed"
)

// Run is the mutable state of one mission execution.
type Run struct {
	ID         string
	Mission    *model.Mission
	Status     RunStatus
	Checkpoint int // index of the next checkpoint to process
	Vars       map[string]interface{}

	// Rounds counts admitted proposals per attestation checkpoint, including
	// supersessions.
	Rounds map[string]int

	// ProposalIDs maps attestation checkpoints to their current proposal.
	ProposalIDs map[string]string

	Failure   string
	StartedAt time.Time
	UpdatedAt time.Time
}

// Actor is the identity a run proposes and executes under.
func (r *Run) Actor() string {
	return "mission:" + r.ID
}

type stepState int

const (
	stepDone stepState = iota
	stepWaiting
	stepStalled
)

// Service runs missions.
type Service struct {
	runs     *store.MemoryStore[string, Run]
	registry *registry.Service
	gate     *gate.Service
	executor executor.Service
	locks    *store.KeyedMutex
}

// New creates a mission runtime. The keyed mutex serializes operations per
// run and must not be shared with the proposal-level one.
func New(reg *registry.Service, g *gate.Service, exec executor.Service) *Service {
	return &Service{
		runs: store.NewMemoryStore[string, Run](func(r *Run) string {
			return r.ID
		}),
		registry: reg,
		gate:     g,
		executor: exec,
		locks:    store.NewKeyedMutex(),
	}
}

// Start validates the mission, creates a run seeded with the mission init
// parameters overlaid with vars, and advances it as far as it can go.
func (s *Service) Start(ctx context.Context, aMission *model.Mission, vars map[string]interface{}) (*Run, error) {
	ctx, span := tracing.StartSpan(ctx, "mission.Start", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if issues := aMission.Validate(); len(issues) > 0 {
		err = issues[0]
		return nil, err
	}
	run := &Run{
		ID:          idgen.New(),
		Mission:     aMission,
		Status:      RunRunning,
		Vars:        aMission.Init.ToMap(),
		Rounds:      map[string]int{},
		ProposalIDs: map[string]string{},
		StartedAt:   clock.Now(),
	}
	for k, v := range vars {
		run.Vars[k] = v
	}
	if err = s.runs.Save(ctx, run); err != nil {
		return nil, err
	}
	progress.FromContext(ctx).Update(progress.Delta{Total: len(aMission.Checkpoints)})

	unlock := s.locks.Lock(run.ID)
	defer unlock()
	if err = s.advance(ctx, run); err != nil {
		return run, err
	}
	return run, nil
}

// Advance re-evaluates a waiting or escalated run, typically after new
// attestations arrived or a superseding proposal was admitted.
func (s *Service) Advance(ctx context.Context, runID string) (*Run, error) {
	ctx, span := tracing.StartSpan(ctx, "mission.Advance", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	unlock := s.locks.Lock(runID)
	defer unlock()

	run, err := s.runs.Load(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if run.Status == RunCompleted || run.Status == RunFailed {
		return run, nil
	}
	if err = s.advance(ctx, run); err != nil {
		return run, err
	}
	return run, nil
}

// Get returns a run by ID.
func (s *Service) Get(ctx context.Context, runID string) (*Run, error) {
	run, err := s.runs.Load(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	return run, nil
}

func (s *Service) advance(ctx context.Context, run *Run) error {
	run.Status = RunRunning
	prog := progress.FromContext(ctx)
	for run.Checkpoint < len(run.Mission.Checkpoints) {
		cp := run.Mission.Checkpoints[run.Checkpoint]
		mergeInit(run.Vars, cp)
		switch cp.Mode {
		case model.GateEnforced:
			output, err := s.executor.Execute(ctx, cp.Action, run.Vars)
			if err != nil {
				run.Status = RunFailed
				run.Failure = err.Error()
				s.save(ctx, run)
				return err
			}
			applyExport(cp, output, run.Vars)
		case model.GateAttestation:
			state, err := s.advanceAttestation(ctx, run, cp)
			if err != nil {
				run.Status = RunFailed
				run.Failure = err.Error()
				s.save(ctx, run)
				return err
			}
			switch state {
			case stepWaiting:
				run.Status = RunWaiting
				prog.Update(progress.Delta{Waiting: 1})
				return s.save(ctx, run)
			case stepStalled:
				run.Status = RunEscalated
				prog.Update(progress.Delta{Escalated: 1})
				return s.save(ctx, run)
			}
		case model.GateBranch:
			// Branch limits are evaluated while the watched checkpoint waits;
			// reaching the branch in sequence means the watched proposal
			// resolved.
		}
		run.Checkpoint++
		prog.Update(progress.Delta{Completed: 1})
	}
	run.Status = RunCompleted
	return s.save(ctx, run)
}

// advanceAttestation admits the checkpoint's proposal on first visit, then
// follows its status: approved proposals pass the gate and run the
// checkpoint action, superseded ones roll over to their successor, and
// stalled ones (blocked or escalated without a successor) hand the run to
// out-of-band resolution.
func (s *Service) advanceAttestation(ctx context.Context, run *Run, cp *model.Checkpoint) (stepState, error) {
	id, ok := run.ProposalIDs[cp.Name]
	if !ok {
		payload := expander.Expand(cp.Payload, run.Vars)
		data, err := json.Marshal(payload)
		if err != nil {
			return stepStalled, fmt.Errorf("checkpoint %s payload: %w", cp.Name, err)
		}
		admitted, err := s.registry.Propose(ctx, cp.BlueprintID, cp.ActionType, proposal.ComputeDigest(data), run.Actor())
		if err != nil {
			return stepStalled, err
		}
		id = admitted.ID
		run.ProposalIDs[cp.Name] = id
		run.Rounds[cp.Name]++
	}
	for {
		current, err := s.registry.Get(ctx, id)
		if err != nil {
			return stepStalled, err
		}
		switch current.Status {
		case proposal.StatusPending:
			if err = s.evaluateBranches(ctx, run, cp, current); err != nil {
				return stepStalled, err
			}
			refreshed, err := s.registry.Get(ctx, id)
			if err != nil {
				return stepStalled, err
			}
			if refreshed.Status != proposal.StatusPending {
				continue
			}
			return stepWaiting, nil
		case proposal.StatusApproved:
			if _, err = s.gate.Execute(ctx, id, run.Actor()); err != nil {
				return stepStalled, err
			}
			fallthrough
		case proposal.StatusExecuted:
			if cp.Action != nil {
				output, err := s.executor.Execute(ctx, cp.Action, run.Vars)
				if err != nil {
					return stepStalled, err
				}
				applyExport(cp, output, run.Vars)
			}
			return stepDone, nil
		case proposal.StatusBlocked, proposal.StatusEscalated:
			if current.SupersededBy != "" {
				id = current.SupersededBy
				run.ProposalIDs[cp.Name] = id
				run.Rounds[cp.Name]++
				continue
			}
			return stepStalled, nil
		default:
			return stepStalled, fmt.Errorf("proposal %s has unknown status %s", id, current.Status)
		}
	}
}

// evaluateBranches applies every branch checkpoint watching cp to its
// pending proposal.
func (s *Service) evaluateBranches(ctx context.Context, run *Run, cp *model.Checkpoint, current *proposal.Proposal) error {
	for _, branch := range run.Mission.Checkpoints {
		if branch.Mode != model.GateBranch || branch.Watch != cp.Name {
			continue
		}
		hit, err := limitHit(branch, run.Rounds[cp.Name], current)
		if err != nil {
			return err
		}
		if !hit {
			continue
		}
		reason := branch.Reason
		if reason == "" {
			reason = fmt.Sprintf("limit hit at checkpoint %s", branch.Name)
		}
		if _, err = s.gate.Escalate(ctx, current.ID, reason); err != nil {
			return err
		}
	}
	return nil
}

func limitHit(branch *model.Checkpoint, rounds int, current *proposal.Proposal) (bool, error) {
	if branch.MaxRounds > 0 && rounds > branch.MaxRounds {
		return true, nil
	}
	maxWait, err := branch.MaxWaitDuration()
	if err != nil {
		return false, err
	}
	if maxWait > 0 && clock.Now().Sub(current.CreatedAt) > maxWait {
		return true, nil
	}
	return false, nil
}

func (s *Service) save(ctx context.Context, run *Run) error {
	run.UpdatedAt = clock.Now()
	return s.runs.Save(ctx, run)
}

func mergeInit(vars map[string]interface{}, cp *model.Checkpoint) {
	for _, param := range cp.Init {
		vars[param.Name] = expander.Expand(param.Value, vars)
	}
}

// applyExport copies checkpoint output into the run variables. The raw
// output is exposed as $output for export expressions; an export with no
// value expression copies the output field of the same name.
func applyExport(cp *model.Checkpoint, output interface{}, vars map[string]interface{}) {
	outMap := asMap(output)
	vars["output"] = outMap
	for _, param := range cp.Export {
		if param.Value == nil {
			vars[param.Name] = outMap[param.Name]
			continue
		}
		vars[param.Name] = expander.Expand(param.Value, vars)
	}
}

func asMap(output interface{}) map[string]interface{} {
	if m, ok := output.(map[string]interface{}); ok {
		return m
	}
	out := map[string]interface{}{}
	data, err := json.Marshal(output)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(data, &out)
	return out
}
