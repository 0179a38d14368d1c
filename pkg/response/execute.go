package response

import (
	"context"
	"fmt"

	"github.com/jwebster45206/npc-engine/pkg/actor"
)

// Work progress per WORK_ON: a base amount plus a bonus per skill level.
const (
	WorkProgressBase     = 10.0
	WorkProgressPerLevel = 2.0
)

type executor func(ctx context.Context, p *Processor, c *actor.Character, intent actor.ActionIntent) error

var executors = map[actor.ActionType]executor{
	actor.ActionMoveTo:      executeMove,
	actor.ActionWorkOn:      executeWork,
	actor.ActionPickUp:      executePickUp,
	actor.ActionPutDown:     executePutDown,
	actor.ActionThrow:       executeThrow,
	actor.ActionUseItem:     executeUse,
	actor.ActionDrinkCoffee: executeInPlace,
	actor.ActionEatSnack:    executeInPlace,
	actor.ActionSocialize:   executeInPlace,
	actor.ActionRest:        executeInPlace,
	actor.ActionTalkTo:      executeInPlace,
}

// stateFor is the character state while an action runs.
func stateFor(t actor.ActionType) actor.ActionState {
	switch t {
	case actor.ActionMoveTo:
		return actor.StateMoving
	case actor.ActionWorkOn:
		return actor.StateWorking
	case actor.ActionTalkTo, actor.ActionSocialize:
		return actor.StateTalking
	default:
		return actor.StateBusy
	}
}

func executeMove(ctx context.Context, p *Processor, c *actor.Character, intent actor.ActionIntent) error {
	if !p.movement.MoveCharacterTo(ctx, c, intent.Target) {
		return fmt.Errorf("%w: move to %s refused", ErrExecution, intent.Target)
	}
	return nil
}

// WorkProgress is how much one WORK_ON advances a task for a character
// with the given skill level.
func WorkProgress(skill int) float64 {
	return WorkProgressBase + WorkProgressPerLevel*float64(skill)
}

func executeWork(ctx context.Context, p *Processor, c *actor.Character, intent actor.ActionIntent) error {
	task := c.Task()
	if task == nil {
		return fmt.Errorf("%w: task was unassigned", ErrExecution)
	}
	progress, done := c.AdvanceTask(WorkProgress(c.Skill(task.RequiredSkill)))
	p.logger.DebugContext(ctx, "Task progressed",
		"character_id", c.ID,
		"task_id", task.ID,
		"progress", progress)
	if done {
		p.fire(ctx, EventTaskCompleted, map[string]any{
			"character_id": c.ID,
			"task_id":      task.ID,
			"task":         task.Name,
			"action_id":    intent.ID.String(),
		})
	}
	return nil
}

func executePickUp(_ context.Context, p *Processor, c *actor.Character, intent actor.ActionIntent) error {
	if err := p.inventory.TakeObject(c, intent.Target); err != nil {
		return fmt.Errorf("%w: %w", ErrExecution, err)
	}
	return nil
}

func executePutDown(_ context.Context, p *Processor, c *actor.Character, _ actor.ActionIntent) error {
	if err := p.inventory.PlaceObject(c, c.HeldItem()); err != nil {
		return fmt.Errorf("%w: %w", ErrExecution, err)
	}
	return nil
}

func executeThrow(ctx context.Context, p *Processor, c *actor.Character, intent actor.ActionIntent) error {
	held := c.HeldItem()
	if err := executePutDown(ctx, p, c, intent); err != nil {
		return err
	}
	p.fire(ctx, EventObjectThrown, map[string]any{
		"character_id": c.ID,
		"object_id":    held,
		"location":     c.Location(),
	})
	return nil
}

func executeUse(ctx context.Context, p *Processor, c *actor.Character, intent actor.ActionIntent) error {
	p.fire(ctx, EventItemUsed, map[string]any{
		"character_id": c.ID,
		"object_id":    intent.Target,
	})
	return nil
}

// executeInPlace covers actions whose only effects are the busy state and
// the need deltas.
func executeInPlace(context.Context, *Processor, *actor.Character, actor.ActionIntent) error {
	return nil
}
