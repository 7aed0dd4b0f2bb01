package ai

// launchpadSchemaDescription describes the ClickHouse schema used for NL→SQL prompting.
//
// Keep it in sync with the actual table definitions in init.sql.
const launchpadSchemaDescription = `
Database: launchpad

Table: launches
Columns:
  - run_id      String     -- Workflow run identifier
  - workflow    String     -- "issuance" or "swap"
  - started_at  DateTime   -- When the run started (UTC)
  - finished_at DateTime   -- When the run finished (UTC)
  - succeeded   UInt8      -- 1 if every step confirmed
  - canceled    UInt8      -- 1 if the run was canceled mid-confirmation
  - error_kind  String     -- Failure class of the first failed step, empty on success
  - error       String     -- Failure message, empty on success
  - mint        String     -- Mint address created by an issuance run, empty otherwise
  - steps       String     -- JSON array of per-step outcomes

Table: swaps
Columns:
  - signature   String     -- Transaction signature of the confirmed swap
  - timestamp   DateTime   -- When the swap confirmed (UTC)
  - pair        String     -- Pool pair name, e.g. "SOL/USDC"
  - input_mint  String     -- Mint address of the token sold
  - output_mint String     -- Mint address of the token bought
  - amount_in   UInt64     -- Raw input amount in base units
  - amount_out  UInt64     -- Quoted output amount in base units
  - minimum_out UInt64     -- Slippage floor enforced on-chain
  - price       Float64    -- Implied price: amount_out / amount_in
  - fee_bps     UInt16     -- Pool fee in basis points
  - pool        String     -- Pool identifier

Notes:
  - Failure rates come from launches: countIf(succeeded = 0) / count().
  - For volume calculations SUM(amount_in) or SUM(amount_out) on swaps.
  - Time filters should use started_at or timestamp, e.g. timestamp >= now() - INTERVAL 24 HOUR.
`
