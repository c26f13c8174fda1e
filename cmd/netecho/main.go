// Command netecho is a UDP echo endpoint. In listen mode it prints
// whatever it receives and echoes stdin back to the last sender; in
// talk mode it sends stdin to a fixed destination and prints replies.
package main

import (
	"errors"
	"os"

	"github.com/fenestra-os/display/netecho"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var listen string
	var talk string

	root := cobra.Command{
		Use:          "netecho",
		Short:        "netecho sends and receives UDP echo traffic",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var e *netecho.Endpoint
			var err error
			switch {
			case listen != "" && talk != "":
				return errors.New("--listen and --talk are mutually exclusive")
			case listen != "":
				e, err = netecho.Listen(listen)
			case talk != "":
				e, err = netecho.Dial(talk)
			default:
				return errors.New("one of --listen or --talk is required")
			}
			if err != nil {
				return err
			}
			defer e.Close()

			return e.Run(os.Stdin, os.Stdout)
		},
	}

	root.Flags().StringVarP(&listen, "listen", "l", "", "address to listen on")
	root.Flags().StringVarP(&talk, "talk", "t", "", "address to talk to")

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("exiting")
	}
}
