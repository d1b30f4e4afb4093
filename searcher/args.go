package searcher

// Hyperparameters for MCTS

// Rewards are final stone margins in [-TotalStones, TotalStones], so the
// exploration constant is scaled to that range rather than to win/loss.
const DefaultExploration = 12.0

// Node cache limit; once the arena is full the stalest nodes are pruned
const DefaultMaxNodes = 2_000_000
