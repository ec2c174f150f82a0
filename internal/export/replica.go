package export

import (
	"context"
	"fmt"
	"time"

	"github.com/malimedia/auctionpipe/internal/logging"
	"github.com/malimedia/auctionpipe/internal/record"
	"github.com/malimedia/auctionpipe/internal/snapshot"
	"github.com/malimedia/auctionpipe/internal/store"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuctionRaw is the relational replica row. The auction id is the primary
// key, so re-replicating a diff upserts instead of duplicating.
type AuctionRaw struct {
	OGM             string          `gorm:"column:ogm;type:varchar(12);uniqueIndex"`
	PaTitle         string          `gorm:"column:pa_title;type:varchar(255)"`
	AucTitle        string          `gorm:"column:auc_title;type:varchar(255)"`
	AucID           string          `gorm:"column:auc_id;type:varchar(32);primaryKey"`
	AucLink         string          `gorm:"column:auc_link;type:varchar(255)"`
	HighBid         decimal.Decimal `gorm:"column:high_bid;type:decimal(7,2)"`
	AdminCost       decimal.Decimal `gorm:"column:admin_cost;type:decimal(7,2)"`
	GarantPrice     decimal.Decimal `gorm:"column:garant_price;type:decimal(7,2)"`
	DateHighBid     *time.Time      `gorm:"column:date_high_bid"`
	PayDate         *time.Time      `gorm:"column:pay_date"`
	AnnulIns        decimal.Decimal `gorm:"column:annul_ins;type:decimal(7,2)"`
	FullOption      decimal.Decimal `gorm:"column:full_option;type:decimal(7,2)"`
	AnnulDate       *time.Time      `gorm:"column:annul_date"`
	CollectDate     *time.Time      `gorm:"column:collect_date"`
	ExtraInfo       string          `gorm:"column:extra_info;type:text"`
	ClangID         string          `gorm:"column:clang_id;type:varchar(32)"`
	CustFname       string          `gorm:"column:cust_fname;type:varchar(255)"`
	CustLname       string          `gorm:"column:cust_lname;type:varchar(255)"`
	CustEmail       string          `gorm:"column:cust_email;type:varchar(255)"`
	CustStreet      string          `gorm:"column:cust_street;type:varchar(255)"`
	CustHousenr     string          `gorm:"column:cust_housenr;type:varchar(255)"`
	CustHnrSuff     string          `gorm:"column:cust_hnr_suff;type:varchar(255)"`
	CustPostCode    string          `gorm:"column:cust_post_code;type:varchar(255)"`
	CustTown        string          `gorm:"column:cust_town;type:varchar(255)"`
	CustPhone       string          `gorm:"column:cust_phone;type:varchar(255)"`
	BidIsSuspicious bool            `gorm:"column:bid_is_suspicious"`
}

// Replicator upserts diff snapshots into the MySQL replica table.
type Replicator struct {
	db    *gorm.DB
	table string
}

// NewReplicator opens the replica database and ensures the table exists.
func NewReplicator(dsn, table string) (*Replicator, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open replica db: %w", err)
	}
	r := &Replicator{db: db, table: table}
	if err := db.Table(table).AutoMigrate(&AuctionRaw{}); err != nil {
		return nil, fmt.Errorf("migrate replica table %s: %w", table, err)
	}
	return r, nil
}

// ReplicateDiff loads the diff snapshot from the store and upserts its
// records. Returns the number of records written.
func (r *Replicator) ReplicateDiff(ctx context.Context, s store.Store) (int, error) {
	data, err := s.Get(ctx, snapshot.KeyDiff)
	if err != nil {
		return 0, fmt.Errorf("load diff snapshot: %w", err)
	}
	recs, err := snapshot.Decode(data)
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}

	rows := make([]AuctionRaw, len(recs))
	for i, rec := range recs {
		rows[i] = toReplicaRow(rec)
	}
	res := r.db.WithContext(ctx).
		Table(r.table).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("upsert replica rows: %w", res.Error)
	}
	logging.FromContext(ctx).Info("diff replicated", "table", r.table, "records", len(rows))
	return len(rows), nil
}

func toReplicaRow(rec record.AuctionRecord) AuctionRaw {
	return AuctionRaw{
		OGM:             rec.OGM,
		PaTitle:         rec.PartnerTitle,
		AucTitle:        rec.AuctionTitle,
		AucID:           rec.AuctionID,
		AucLink:         rec.AuctionLink,
		HighBid:         rec.HighBid,
		AdminCost:       rec.AdminCost,
		GarantPrice:     rec.GuarantPrice,
		DateHighBid:     parseUTC(rec.DateHighBid),
		PayDate:         parseUTC(rec.PayDate),
		AnnulIns:        rec.AnnulInsurance,
		FullOption:      rec.FullOption,
		AnnulDate:       parseUTC(rec.AnnulDate),
		CollectDate:     parseUTC(rec.CollectDate),
		ExtraInfo:       rec.ExtraInfo,
		ClangID:         rec.ClangID,
		CustFname:       rec.CustFirstName,
		CustLname:       rec.CustLastName,
		CustEmail:       rec.CustEmail,
		CustStreet:      rec.CustStreet,
		CustHousenr:     rec.CustHouseNr,
		CustHnrSuff:     rec.CustHNrSuffix,
		CustPostCode:    rec.CustPostCode,
		CustTown:        rec.CustTown,
		CustPhone:       rec.CustPhone,
		BidIsSuspicious: rec.Suspicious(),
	}
}

// parseUTC turns a normalized snapshot timestamp into a nullable column
// value. Cleaned dates are either empty or ISO-8601 Z strings; anything
// else stays NULL rather than failing the replication.
func parseUTC(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02T15:04:05Z", s)
	if err != nil {
		return nil
	}
	return &t
}
