package handler

import "rolegate/internal/botops"

type SendRequest struct {
	Channel string `json:"channel"`
	Message string `json:"message"`

	cmd botops.SendCommand
}

func (r *SendRequest) Validate() error {
	cmd, err := botops.NewSendCommand(r.Channel, r.Message)
	if err != nil {
		return err
	}
	r.cmd = cmd
	return nil
}
