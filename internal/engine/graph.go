package engine

import (
	"context"
	"fmt"
)

// node identifies one stage of the turn pipeline. The topology is fixed:
// retrieve_memory -> format_prompt -> llm_call -> (retry loop through
// handle_error) -> extract_memory -> update_importance -> store_memory ->
// (conditional) generate_quest -> end.
type node string

const (
	nodeRetrieveMemory   node = "retrieve_memory"
	nodeFormatPrompt     node = "format_prompt"
	nodeLLMCall          node = "llm_call"
	nodeHandleError      node = "handle_error"
	nodeExtractMemory    node = "extract_memory"
	nodeUpdateImportance node = "update_importance"
	nodeStoreMemory      node = "store_memory"
	nodeGenerateQuest    node = "generate_quest"
	nodeEnd              node = "end"
)

// maxTransitions guards against a malformed edge table looping forever.
const maxTransitions = 100

// run drives one state through the pipeline until the terminal node.
func (e *Engine) run(ctx context.Context, s *State) error {
	cur := nodeRetrieveMemory
	for i := 0; cur != nodeEnd; i++ {
		if i >= maxTransitions {
			return fmt.Errorf("%w: stuck at %q after %d transitions", ErrTransitionLimit, cur, i)
		}
		if err := e.step(ctx, cur, s); err != nil {
			return err
		}
		next, err := e.next(cur, s)
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}

// step executes a single node against the state.
func (e *Engine) step(ctx context.Context, n node, s *State) error {
	switch n {
	case nodeRetrieveMemory:
		return e.retrieveMemory(s)
	case nodeFormatPrompt:
		return e.formatPrompt(s)
	case nodeLLMCall:
		return e.llmCall(ctx, s)
	case nodeHandleError:
		return e.handleError(ctx, s)
	case nodeExtractMemory:
		return e.extractMemory(s)
	case nodeUpdateImportance:
		return e.updateImportance(s)
	case nodeStoreMemory:
		return e.storeMemory(s)
	case nodeGenerateQuest:
		return e.generateQuest(ctx, s)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownNode, n)
	}
}

// next resolves the edge out of a node for the current state.
func (e *Engine) next(cur node, s *State) (node, error) {
	switch cur {
	case nodeRetrieveMemory:
		return nodeFormatPrompt, nil
	case nodeFormatPrompt:
		return nodeLLMCall, nil
	case nodeLLMCall:
		// Both the retry and the exhausted case route through
		// handle_error, which re-raises once retries run out.
		if s.Err != nil {
			return nodeHandleError, nil
		}
		return nodeExtractMemory, nil
	case nodeHandleError:
		return nodeLLMCall, nil
	case nodeExtractMemory:
		return nodeUpdateImportance, nil
	case nodeUpdateImportance:
		return nodeStoreMemory, nil
	case nodeStoreMemory:
		if e.shouldGenerateQuest(s) {
			return nodeGenerateQuest, nil
		}
		return nodeEnd, nil
	case nodeGenerateQuest:
		return nodeEnd, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownNode, cur)
	}
}
