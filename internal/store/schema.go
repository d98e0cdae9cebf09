package store

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- PERSONA TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS persona SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS name ON persona TYPE string;
    DEFINE FIELD IF NOT EXISTS type ON persona TYPE string;
    DEFINE FIELD IF NOT EXISTS personality ON persona TYPE object FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS system_prompt ON persona TYPE string;
    DEFINE FIELD IF NOT EXISTS user_prompt_template ON persona TYPE string;
    DEFINE FIELD IF NOT EXISTS model_params ON persona TYPE object FLEXIBLE;

    DEFINE FIELD IF NOT EXISTS history ON persona TYPE array<object> FLEXIBLE;
    -- Note: Must REMOVE then DEFINE to ensure FLEXIBLE is set (IF NOT EXISTS won't update existing field)
    REMOVE FIELD IF EXISTS history.* ON persona;
    DEFINE FIELD history.* ON persona TYPE object FLEXIBLE;

    DEFINE FIELD IF NOT EXISTS memory ON persona TYPE array<object> FLEXIBLE;
    REMOVE FIELD IF EXISTS memory.* ON persona;
    DEFINE FIELD memory.* ON persona TYPE object FLEXIBLE;

    DEFINE FIELD IF NOT EXISTS quests ON persona TYPE array<object> FLEXIBLE;
    REMOVE FIELD IF EXISTS quests.* ON persona;
    DEFINE FIELD quests.* ON persona TYPE object FLEXIBLE;

    DEFINE FIELD IF NOT EXISTS schema_version ON persona TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created ON persona TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated ON persona TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS persona_name ON persona FIELDS name UNIQUE;
    DEFINE INDEX IF NOT EXISTS persona_type ON persona FIELDS type;
`
