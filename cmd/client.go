package cmd

import (
	"net"

	"github.com/spf13/cobra"

	"github.com/defsky/uterm/proto"
	"github.com/defsky/uterm/session"
)

// dialEndpoint opens a framed connection to a running endpoint using the
// transport settings from the config file and flags.
func dialEndpoint() (*proto.Framer, *session.NetTransport, error) {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if clientNetwork != "" {
		cfg.Network = clientNetwork
	}
	if clientAddr != "" {
		cfg.Addr = clientAddr
	}

	conn, err := net.Dial(cfg.Network, cfg.Addr)
	if err != nil {
		return nil, nil, err
	}
	t := session.NewNetTransport(conn)
	return proto.NewFramer(t), t, nil
}

// exchange sends one command packet and, unless fireAndForget, waits for
// the matching response.
func exchange(op proto.Opcode, payload []byte, fireAndForget bool) (*proto.Packet, error) {
	fr, t, err := dialEndpoint()
	if err != nil {
		return nil, err
	}
	defer t.Close()

	req := &proto.Packet{Opcode: op}
	req.Write(payload)
	if err := fr.SendPacket(proto.Marshal(req)); err != nil {
		return nil, err
	}
	if fireAndForget {
		return nil, nil
	}

	frame, err := fr.RecvPacket()
	if err != nil {
		return nil, err
	}
	resp, err := proto.Unmarshal(frame)
	if err != nil {
		return nil, err
	}
	if resp.Opcode != op {
		return nil, proto.EInvalidPacket
	}
	return resp, nil
}

var clientNetwork string
var clientAddr string

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&clientNetwork, "network", "", "endpoint transport network (unix or tcp)")
	cmd.Flags().StringVar(&clientAddr, "addr", "", "endpoint transport address")
}
