package service

import (
	"context"
	"fmt"
	"time"

	"tably/internal/domain"
	"tably/internal/models"
	"tably/internal/repository"
	"tably/pkg/chain"

	"github.com/sirupsen/logrus"
)

// ChainTransfer is the slice of the custody chain client the processor needs.
type ChainTransfer interface {
	Transfer(ctx context.Context, toAddress string, amountCents int64) (string, error)
}

// PayoutService is the batch processor for unstake requests. Records are paid
// strictly sequentially: no two records can race a shared precondition and pay
// the same profile twice, and the external ledger stays auditable. Each
// record's failure is isolated from the rest of the batch.
type PayoutService struct {
	stakes *repository.StakeRepository
	recon  *repository.ReconciliationRepository
	chain  ChainTransfer
}

func NewPayoutService(stakes *repository.StakeRepository, recon *repository.ReconciliationRepository, ct ChainTransfer) *PayoutService {
	return &PayoutService{stakes: stakes, recon: recon, chain: ct}
}

type PayoutReport struct {
	Candidates int `json:"candidates"`
	Paid       int `json:"paid"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	Flagged    int `json:"flagged"`
}

// Run processes every UNSTAKE_REQUESTED stake once. Unpayable records are
// skipped and flagged, transient transfer failures stay queued for the next
// run, and ambiguous or unrecordable outcomes are pulled out of the retry set.
func (p *PayoutService) Run(ctx context.Context) (*PayoutReport, error) {
	records, err := p.stakes.ListUnstakeRequested()
	if err != nil {
		return nil, fmt.Errorf("payout: list candidates: %w", err)
	}

	report := &PayoutReport{Candidates: len(records)}
	for i := range records {
		rec := &records[i]
		p.processRecord(ctx, rec, report)
	}

	logrus.WithFields(logrus.Fields{
		"candidates": report.Candidates,
		"paid":       report.Paid,
		"skipped":    report.Skipped,
		"failed":     report.Failed,
		"flagged":    report.Flagged,
	}).Info("payout run finished")
	return report, nil
}

func (p *PayoutService) processRecord(ctx context.Context, rec *models.StakeRecord, report *PayoutReport) {
	log := logrus.WithFields(logrus.Fields{
		"stake_id":     rec.ID,
		"profile_id":   rec.ProfileID,
		"amount_cents": rec.AmountCents,
	})

	if rec.Profile.WalletAddress == nil || *rec.Profile.WalletAddress == "" {
		log.Warn("payout: profile has no wallet address, skipping record")
		p.flag(rec, domain.ReconPayoutSkipped, "", "profile has no resolvable wallet address")
		report.Skipped++
		return
	}
	if rec.AmountCents <= 0 {
		log.Warn("payout: non-positive stake amount, skipping record")
		p.flag(rec, domain.ReconPayoutSkipped, "", "non-positive stake amount")
		report.Skipped++
		return
	}

	sig, err := p.chain.Transfer(ctx, *rec.Profile.WalletAddress, rec.AmountCents)
	if err != nil {
		if chain.IsAmbiguous(err) {
			// Funds may have left custody; the record must not be re-picked
			// up, or the next run risks a duplicate payout.
			log.WithError(err).Error("payout: transfer outcome unknown, pulling record from retry set")
			if _, uerr := p.stakes.MarkPayoutUnconfirmed(rec.ID); uerr != nil {
				log.WithError(uerr).Error("payout: failed to mark record unconfirmed")
			}
			p.flag(rec, domain.ReconPayoutAmbiguous, "", err.Error())
			report.Flagged++
			return
		}
		// Clean failure before any effect: safe to retry on the next run.
		log.WithError(err).Warn("payout: transfer failed, record stays queued")
		report.Failed++
		return
	}

	rows, err := p.stakes.MarkUnstaked(rec.ID, sig, time.Now())
	if err != nil || rows == 0 {
		// Funds have left custody but the record still reads as queued.
		detail := fmt.Sprintf("transfer %s confirmed but stake not advanced", sig)
		if err != nil {
			detail += ": " + err.Error()
		}
		log.WithField("signature", sig).Error("payout: " + detail)
		if _, uerr := p.stakes.MarkPayoutUnconfirmed(rec.ID); uerr != nil {
			log.WithError(uerr).Error("payout: failed to mark record unconfirmed")
		}
		p.flag(rec, domain.ReconPayoutUnconfirmed, sig, detail)
		report.Flagged++
		return
	}

	log.WithField("signature", sig).Info("payout confirmed")
	report.Paid++
}

func (p *PayoutService) flag(rec *models.StakeRecord, kind, signature, detail string) {
	ref := fmt.Sprintf("stake:%d", rec.ID)
	if signature != "" {
		ref = signature
	}
	f := &models.ReconciliationFlag{
		Kind:        kind,
		ProfileID:   rec.ProfileID,
		Reference:   ref,
		AmountCents: rec.AmountCents,
		Detail:      detail,
	}
	if err := p.recon.Create(f); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"stake_id": rec.ID,
			"kind":     kind,
		}).Error("payout: failed to persist reconciliation flag")
	}
}
