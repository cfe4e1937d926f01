package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-control-systems/thingweb/components/client/clcore"
	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

// printer prints the interaction results to the command output.
type printer struct {
	cmd *cobra.Command
}

func (p printer) OnGet(_ string, content thcore.Content) {
	fmt.Fprintln(p.cmd.OutOrStdout(), content.String())
}

func (p printer) OnGetError(name string, err error) {
	p.cmd.PrintErrf("failed to read property: name=%s: %v\n", name, err)
}

func (p printer) OnPut(name string, _ thcore.Content) {
	fmt.Fprintf(p.cmd.OutOrStdout(), "property written: name=%s\n", name)
}

func (p printer) OnPutError(name string, err error) {
	p.cmd.PrintErrf("failed to write property: name=%s: %v\n", name, err)
}

func (p printer) OnAction(_ string, content thcore.Content) {
	fmt.Fprintln(p.cmd.OutOrStdout(), content.String())
}

func (p printer) OnActionError(name string, err error) {
	p.cmd.PrintErrf("failed to invoke action: name=%s: %v\n", name, err)
}

func (p printer) OnObserve(_ string, content thcore.Content) {
	fmt.Fprintln(p.cmd.OutOrStdout(), content.String())
}

func (p printer) OnObserveError(name string, err error) {
	p.cmd.PrintErrf("observation failed: name=%s: %v\n", name, err)
}

type clientTask func(client clcore.Client, args []string) *clcore.Future

// runClient builds the client for args[0] and resolves the interaction with printer.
func runClient(cmd *cobra.Command, cfg *config, args []string, task clientTask) error {
	ctx := cmd.Context()

	closer := &core.FanoutCloser{}
	defer closeAll(closer)

	env, err := newClientEnv(ctx, cfg, closer)
	if err != nil {
		return err
	}

	client, err := env.newClient(ctx, cfg, args[0])
	if err != nil {
		return err
	}
	closer.Add("client", client)

	future := task(client, args[1:])

	r, err := future.Wait(ctx)
	if err != nil {
		return err
	}

	clcore.Dispatch(r, printer{cmd: cmd})

	return r.Err
}

func newGetCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "get <description> <property>",
		Short: "Read the property of the remote thing",
		Long: "Read the property of the remote thing.\n" +
			"The description is a URL, e.g. http://127.0.0.1:8080/things/led, or a file path.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(cmd, cfg, args, func(client clcore.Client, args []string) *clcore.Future {
				return client.Get(args[0])
			})
		},
	}
}

func newPutCmd(cfg *config) *cobra.Command {
	var mediaType string

	cmd := &cobra.Command{
		Use:   "put <description> <property> <value>",
		Short: "Write the property of the remote thing",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(cmd, cfg, args, func(client clcore.Client, args []string) *clcore.Future {
				return client.Put(args[0], newContent(args[1], mediaType))
			})
		},
	}

	cmd.Flags().StringVar(&mediaType, "media-type", thcore.MediaTypeTextPlain.String(),
		"value media type")

	return cmd
}

func newActionCmd(cfg *config) *cobra.Command {
	var mediaType string

	cmd := &cobra.Command{
		Use:   "action <description> <action> [input]",
		Short: "Invoke the action of the remote thing",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(cmd, cfg, args, func(client clcore.Client, args []string) *clcore.Future {
				input := ""
				if len(args) > 1 {
					input = args[1]
				}

				return client.Action(args[0], newContent(input, mediaType))
			})
		},
	}

	cmd.Flags().StringVar(&mediaType, "media-type", thcore.MediaTypeTextPlain.String(),
		"input media type")

	return cmd
}

func newObserveCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "observe <description> <property>",
		Short: "Print the property changes of the remote thing until interrupted",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runObserve(cmd, cfg, args[0], args[1])
		},
	}
}

func runObserve(cmd *cobra.Command, cfg *config, source, name string) error {
	ctx := cmd.Context()

	closer := &core.FanoutCloser{}
	defer closeAll(closer)

	env, err := newClientEnv(ctx, cfg, closer)
	if err != nil {
		return err
	}

	client, err := env.newClient(ctx, cfg, source)
	if err != nil {
		return err
	}
	closer.Add("client", client)

	future := client.Observe(name, clcore.ObserveCallback(printer{cmd: cmd}))

	r, err := future.Wait(ctx)
	if err != nil {
		return err
	}
	if r.Failed() {
		return r.Err
	}

	<-ctx.Done()

	if err := client.ObserveRelease(name); err != nil {
		return fmt.Errorf("failed to release observation: name=%s: %w", name, err)
	}

	return nil
}

func newContent(value, mediaType string) thcore.Content {
	return thcore.NewContent([]byte(value), thcore.ParseMediaType(mediaType))
}
