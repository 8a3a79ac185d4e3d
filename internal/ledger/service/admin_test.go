package service

import (
	"foodshare/internal/ledger/models"
	id "foodshare/pkg/domain"
	dErrors "foodshare/pkg/domain-errors"
	"foodshare/pkg/platform/events"
)

func (s *ServiceSuite) TestTransferAdministration() {
	s.Run("current administrator hands over", func() {
		err := s.service.TransferAdministration(s.ctx(), adminID, donorID)
		s.Require().NoError(err)
		s.Equal(donorID, s.service.Admin())

		last := s.publisher.emitted[len(s.publisher.emitted)-1]
		s.Equal(events.KindAdministrationTransferred, last.Kind)
		s.Equal(adminID, last.Actor)
		s.Equal(donorID, last.Subject)

		// The previous administrator lost the authority with the transfer.
		err = s.service.TransferAdministration(s.ctx(), adminID, recipientID)
		s.ErrorIs(err, models.ErrUnauthorized)
	})

	s.Run("non-administrator may not transfer", func() {
		err := s.service.TransferAdministration(s.ctx(), strangerID, donorID)
		s.ErrorIs(err, models.ErrUnauthorized)
	})

	s.Run("empty target is rejected", func() {
		err := s.service.TransferAdministration(s.ctx(), s.service.Admin(), "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("transfer to self is a no-op that still succeeds", func() {
		admin := s.service.Admin()
		err := s.service.TransferAdministration(s.ctx(), admin, admin)
		s.NoError(err)
		s.Equal(admin, s.service.Admin())
	})
}

func (s *ServiceSuite) TestForceComplete() {
	s.Run("administrator completes from any state", func() {
		donation := s.createDonation(nil)

		forced, err := s.service.ForceComplete(s.ctx(), adminID, donation.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, forced.Status)
	})

	s.Run("even from a terminal state", func() {
		donation := s.createDonation(nil)
		_, err := s.service.CancelDonation(s.ctx(), donorID, donation.ID, "")
		s.Require().NoError(err)

		forced, err := s.service.ForceComplete(s.ctx(), adminID, donation.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, forced.Status)
	})

	s.Run("non-administrator is rejected", func() {
		donation := s.createDonation(nil)
		_, err := s.service.ForceComplete(s.ctx(), donorID, donation.ID)
		s.ErrorIs(err, models.ErrUnauthorized)
	})

	s.Run("missing donation", func() {
		_, err := s.service.ForceComplete(s.ctx(), adminID, id.DonationID(404))
		s.ErrorIs(err, models.ErrDonationNotFound)
	})
}

func (s *ServiceSuite) TestForceCancel() {
	s.Run("administrator cancels a picked up donation", func() {
		donation := s.createDonation(nil)
		_, err := s.service.ClaimDonation(s.ctx(), recipientID, donation.ID)
		s.Require().NoError(err)
		_, err = s.service.MarkPickedUp(s.ctx(), recipientID, donation.ID)
		s.Require().NoError(err)

		forced, err := s.service.ForceCancel(s.ctx(), adminID, donation.ID, "dispute resolved against donor")
		s.Require().NoError(err)
		s.Equal(models.StatusCancelled, forced.Status)
		// The claim history survives the override.
		s.Equal(recipientID, forced.Recipient)

		last := s.publisher.emitted[len(s.publisher.emitted)-1]
		s.Equal(events.KindDonationCancelled, last.Kind)
		s.Equal("dispute resolved against donor", last.Reason)
	})

	s.Run("donor may not force cancel", func() {
		donation := s.createDonation(nil)
		_, err := s.service.ForceCancel(s.ctx(), donorID, donation.ID, "")
		s.ErrorIs(err, models.ErrUnauthorized)
	})

	s.Run("new administrator gains the authority", func() {
		donation := s.createDonation(nil)
		s.Require().NoError(s.service.TransferAdministration(s.ctx(), s.service.Admin(), strangerID))

		_, err := s.service.ForceCancel(s.ctx(), strangerID, donation.ID, "")
		s.NoError(err)
	})
}
