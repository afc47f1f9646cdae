package cli

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wascc/wash/pkg/oci"
)

func newRegCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reg",
		Short: "Interact with OCI compliant registries",
		Long:  `Pull and push waSCC artifacts against OCI compliant registries.`,
	}

	cmd.AddCommand(
		newRegPullCmd(),
		newRegPushCmd(),
	)

	return cmd
}

func newRegPullCmd() *cobra.Command {
	var req oci.PullRequest

	cmd := &cobra.Command{
		Use:   "pull <reference>",
		Short: "Pull an artifact from an OCI compliant registry",
		Long: `Pull an artifact from an OCI compliant registry.

Example:
  wash reg pull registry.example.com/ns/echo:v1 -o echo.wasm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Ref = args[0]
			applyCredentialDefaults(&req.User, &req.Password)

			sp := newRegSpinner()
			sp.Start()
			defer sp.Stop()

			puller := oci.NewPuller(oci.NewRemoteRegistry())
			puller.OnProgress(spinnerProgress(sp))

			res, err := puller.Pull(cmd.Context(), req)
			sp.Stop()
			if err != nil {
				return err
			}

			Success("Successfully pulled and validated %s (%s)", res.Path, res.Kind)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.User, "user", "u", "", "OCI username, if omitted anonymous authentication will be used")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "OCI password, if omitted anonymous authentication will be used")
	cmd.Flags().StringVarP(&req.Output, "output", "o", "", "path to output")
	cmd.Flags().StringVarP(&req.Digest, "digest", "d", "", "digest to verify artifact against")
	cmd.Flags().BoolVar(&req.Insecure, "insecure", false, "allow insecure (HTTP) registry connections")
	cmd.Flags().BoolVar(&req.AllowLatest, "allow-latest", false, "allow latest artifact tags")

	return cmd
}

func newRegPushCmd() *cobra.Command {
	var req oci.PushRequest

	cmd := &cobra.Command{
		Use:   "push <reference> <artifact>",
		Short: "Push an artifact to an OCI compliant registry",
		Long: `Push an artifact to an OCI compliant registry.

Example:
  wash reg push registry.example.com/ns/echo:v1 echo.wasm`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Ref = args[0]
			req.Artifact = args[1]
			applyCredentialDefaults(&req.User, &req.Password)

			sp := newRegSpinner()
			sp.Start()
			defer sp.Stop()

			pusher := oci.NewPusher(oci.NewRemoteRegistry())
			pusher.OnProgress(spinnerProgress(sp))

			res, err := pusher.Push(cmd.Context(), req)
			sp.Stop()
			if err != nil {
				return err
			}

			Success("Successfully validated and pushed %s to %s", res.Kind, args[0])
			Info("Digest: %s", res.Digest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.User, "user", "u", "", "OCI username, if omitted anonymous authentication will be used")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "OCI password, if omitted anonymous authentication will be used")
	cmd.Flags().StringVarP(&req.Config, "config", "c", "", "path to config file, if omitted a blank configuration will be used")
	cmd.Flags().BoolVar(&req.Insecure, "insecure", false, "allow insecure (HTTP) registry connections")
	cmd.Flags().BoolVar(&req.AllowLatest, "allow-latest", false, "allow latest artifact tags")

	return cmd
}

// applyCredentialDefaults falls back to WASH_REG_USER / WASH_REG_PASSWORD
// for credential fields the flags left empty.
func applyCredentialDefaults(user, password *string) {
	if *user == "" {
		*user = viper.GetString("reg.user")
	}
	if *password == "" {
		*password = viper.GetString("reg.password")
	}
}

func newRegSpinner() *spinner.Spinner {
	return spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
}

// spinnerProgress adapts workflow stage messages onto the spinner.
func spinnerProgress(sp *spinner.Spinner) oci.ProgressFunc {
	return func(msg string) {
		sp.Suffix = " " + msg
	}
}
