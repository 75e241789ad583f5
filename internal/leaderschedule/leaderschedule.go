// Package leaderschedule populates the leader_mapping/leader_schedule
// tables from the RPC node's leader schedule for one epoch: leader
// identities are interned into small integer ids the same way the event
// store interns addresses, and every slot of the epoch gets a
// (slot, leader_id) row.
package leaderschedule

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
)

// slotsPerEpoch is fixed on mainnet; epoch * slotsPerEpoch is the first
// absolute slot of an epoch, which is also the slot parameter the
// getLeaderSchedule RPC call keys epochs by.
const slotsPerEpoch = 432000

// insertChunkSize bounds how many (slot, leader_id) rows one INSERT carries.
const insertChunkSize = 1600

// Populator writes one epoch's leader schedule into the store.
type Populator struct {
	db     *sql.DB
	client *rpc.Client
	Log    *logrus.Logger
}

func New(db *sql.DB, client *rpc.Client, log *logrus.Logger) *Populator {
	return &Populator{db: db, client: client, Log: log}
}

// CurrentEpoch asks the RPC node which epoch is in progress.
func (p *Populator) CurrentEpoch(ctx context.Context) (uint64, error) {
	info, err := p.client.GetEpochInfo(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("leaderschedule: get epoch info: %w", err)
	}
	return info.Epoch, nil
}

// Populate fetches the leader schedule for epoch and upserts it. Safe to
// re-run: leader interning is INSERT IGNORE and the schedule rows are
// keyed by slot.
func (p *Populator) Populate(ctx context.Context, epoch uint64) error {
	firstSlot := epoch * slotsPerEpoch
	schedule, err := p.client.GetLeaderScheduleWithOpts(ctx, &rpc.GetLeaderScheduleOpts{Epoch: &firstSlot})
	if err != nil {
		return fmt.Errorf("leaderschedule: get leader schedule: %w", err)
	}
	if len(schedule) == 0 {
		return fmt.Errorf("leaderschedule: no schedule for epoch %d", epoch)
	}

	leaders := make([]string, 0, len(schedule))
	for identity := range schedule {
		leaders = append(leaders, identity.String())
	}
	ids, err := p.internLeaders(ctx, leaders)
	if err != nil {
		return err
	}

	rows := make([][]any, 0, slotsPerEpoch)
	for identity, slotIndices := range schedule {
		id := ids[identity.String()]
		for _, idx := range slotIndices {
			rows = append(rows, []any{firstSlot + idx, id})
		}
	}

	for start := 0; start < len(rows); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := p.insertScheduleRows(ctx, rows[start:end]); err != nil {
			return err
		}
		if p.Log != nil {
			p.Log.WithField("epoch", epoch).Infof("leaderschedule: inserted %d/%d", end, len(rows))
		}
	}
	return nil
}

// internLeaders makes sure every leader identity has a leader_mapping row
// and returns identity → id.
func (p *Populator) internLeaders(ctx context.Context, leaders []string) (map[string]int64, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("(?),", len(leaders)), ",")
	args := make([]any, len(leaders))
	for i, l := range leaders {
		args[i] = l
	}
	stmt := fmt.Sprintf("INSERT IGNORE INTO leader_mapping (leader) VALUES %s", placeholders)
	if _, err := p.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("leaderschedule: insert leaders: %w", err)
	}

	placeholders = strings.TrimSuffix(strings.Repeat("?,", len(leaders)), ",")
	stmt = fmt.Sprintf("SELECT id, leader FROM leader_mapping WHERE leader IN (%s)", placeholders)
	rows, err := p.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("leaderschedule: retrieve leader ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64, len(leaders))
	for rows.Next() {
		var id int64
		var leader string
		if err := rows.Scan(&id, &leader); err != nil {
			return nil, fmt.Errorf("leaderschedule: scan leader row: %w", err)
		}
		ids[leader] = id
	}
	return ids, rows.Err()
}

func (p *Populator) insertScheduleRows(ctx context.Context, rows [][]any) error {
	var sb strings.Builder
	sb.WriteString("INSERT IGNORE INTO leader_schedule (slot, leader_id) VALUES ")
	args := make([]any, 0, len(rows)*2)
	for i, row := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("(?, ?)")
		args = append(args, row...)
	}
	if _, err := p.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("leaderschedule: insert schedule rows: %w", err)
	}
	return nil
}
