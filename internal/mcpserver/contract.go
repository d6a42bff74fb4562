package mcpserver

// ReviewPolicyContract describes the fixed review curve and commit rules
// that LLM consumers should understand before recording reviews.
const ReviewPolicyContract = `# MemoCurve Review Policy

Every card follows the same fixed 12-stage forgetting-curve schedule,
anchored at the moment the card is created.

## Stages

| # | Offset from creation | Phase |
|---|----------------------|-------|
| 1 | 30 minutes  | Short-term consolidation |
| 2 | 1 hour      | Short-term consolidation |
| 3 | 12 hours    | Short-term consolidation |
| 4 | 1 day       | Mid-term formation |
| 5 | 2 days      | Mid-term formation |
| 6 | 4 days      | Mid-term enhancement |
| 7 | 7 days      | Long-term formation |
| 8 | 15 days     | Long-term enhancement |
| 9 | 30 days     | Long-term consolidation |
| 10 | 3 months   | Long-term deepening |
| 11 | 6 months   | Long-term solidification |
| 12 | 1 year     | Long-term permanence |

## Rules

1. **Stages complete strictly in order.** The only stage that can be
   recorded is the first pending one; skipping ahead is rejected.
2. **A review counts only when the card is due.** A card is due once the
   current time is within 10 minutes of (or past) its next scheduled
   stage. Recording a review on a card that is not yet due is a no-op.
3. **Fully reviewed cards are closed.** After all 12 stages a card
   accepts no further reviews.
4. **Undo removes only the most recent completion.** Earlier completions
   cannot be removed without first undoing the ones after them.
5. **The schedule never moves.** Completing a stage late does not shift
   the remaining stages; they stay anchored to the creation time.
`
