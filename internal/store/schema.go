package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements is applied in order by EnsureSchema. events_with_id
// stores every swap/transfer with addresses interned as integer ids; the
// events view joins them back to plain strings for everything downstream
// of the store.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS address_lookup_table (
		id      INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		address VARCHAR(64) NOT NULL,
		UNIQUE KEY address_lookup_table_address_uq (address)
	)`,
	`CREATE TABLE IF NOT EXISTS events_with_id (
		id                     BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		event_type             VARCHAR(8) NOT NULL,
		slot                   BIGINT UNSIGNED NOT NULL,
		inclusion_order        INT UNSIGNED NOT NULL,
		ix_index               INT UNSIGNED NOT NULL,
		inner_ix_index         INT NOT NULL,
		authority_id           INT UNSIGNED NOT NULL,
		outer_program_id       INT UNSIGNED NULL,
		program_id             INT UNSIGNED NOT NULL,
		amm_id                 INT UNSIGNED NULL,
		input_mint_id          INT UNSIGNED NOT NULL,
		output_mint_id         INT UNSIGNED NOT NULL,
		input_amount           BIGINT UNSIGNED NOT NULL,
		output_amount          BIGINT UNSIGNED NOT NULL,
		input_ata_id           INT UNSIGNED NOT NULL,
		output_ata_id          INT UNSIGNED NOT NULL,
		input_inner_ix_index   INT NOT NULL,
		output_inner_ix_index  INT NOT NULL,
		KEY events_with_id_slot_idx (slot)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		slot            BIGINT UNSIGNED NOT NULL,
		inclusion_order INT UNSIGNED NOT NULL,
		sig             VARCHAR(128) NOT NULL,
		fee             BIGINT UNSIGNED NOT NULL,
		cu_actual       BIGINT UNSIGNED NOT NULL,
		dont_front      TINYINT(1) NOT NULL DEFAULT 0,
		PRIMARY KEY (slot, inclusion_order),
		KEY transactions_sig_idx (sig)
	)`,
	`CREATE TABLE IF NOT EXISTS sandwiches (
		id       CHAR(36) NOT NULL,
		event_id BIGINT UNSIGNED NOT NULL,
		role     VARCHAR(16) NOT NULL,
		KEY sandwiches_id_idx (id),
		KEY sandwiches_event_id_idx (event_id)
	)`,
	`CREATE TABLE IF NOT EXISTS leader_mapping (
		id     INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		leader VARCHAR(64) NOT NULL,
		UNIQUE KEY leader_mapping_leader_uq (leader)
	)`,
	`CREATE TABLE IF NOT EXISTS leader_schedule (
		slot      BIGINT UNSIGNED NOT NULL PRIMARY KEY,
		leader_id INT UNSIGNED NOT NULL,
		KEY leader_schedule_leader_idx (leader_id)
	)`,
	`CREATE OR REPLACE VIEW events AS
		SELECT
			e.id, e.event_type, e.slot, e.inclusion_order, e.ix_index, e.inner_ix_index,
			a_auth.address     AS authority,
			a_outer.address    AS outer_program,
			a_prog.address     AS program,
			a_amm.address      AS amm,
			a_in_mint.address  AS input_mint,
			a_out_mint.address AS output_mint,
			e.input_amount, e.output_amount,
			a_in_ata.address   AS input_ata,
			a_out_ata.address  AS output_ata,
			e.input_inner_ix_index, e.output_inner_ix_index
		FROM events_with_id e
		JOIN address_lookup_table a_auth ON a_auth.id = e.authority_id
		LEFT JOIN address_lookup_table a_outer ON a_outer.id = e.outer_program_id
		JOIN address_lookup_table a_prog ON a_prog.id = e.program_id
		LEFT JOIN address_lookup_table a_amm ON a_amm.id = e.amm_id
		JOIN address_lookup_table a_in_mint ON a_in_mint.id = e.input_mint_id
		JOIN address_lookup_table a_out_mint ON a_out_mint.id = e.output_mint_id
		JOIN address_lookup_table a_in_ata ON a_in_ata.id = e.input_ata_id
		JOIN address_lookup_table a_out_ata ON a_out_ata.id = e.output_ata_id`,
}

// EnsureSchema applies every table/view definition the store needs,
// idempotently. Called once at daemon startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
