// Package cmd implements the command-line interface for lingoreel.
package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/lingoreel-cli/lingoreel/auth"
	"github.com/lingoreel-cli/lingoreel/icon"
	"github.com/lingoreel-cli/lingoreel/key"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
}

// authCmd manages credentials for the lesson content service.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage credentials for the lesson content service",
}

// authLoginCmd prompts for an API token and stores it in the system keyring.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the content service API token in the system keyring",
	Run: func(cmd *cobra.Command, args []string) {
		if viper.GetString(key.ContentUserID) == "" {
			input := survey.Input{
				Message: "User ID is not set. Please enter it:",
			}
			var response string
			err := survey.AskOne(&input, &response)
			handleErr(err)

			if response == "" {
				return
			}

			viper.Set(key.ContentUserID, response)
			switch err := viper.WriteConfig(); err.(type) {
			case viper.ConfigFileNotFoundError:
				handleErr(viper.SafeWriteConfig())
			default:
				handleErr(err)
			}
		}

		prompt := survey.Password{
			Message: "API token:",
		}
		var token string
		err := survey.AskOne(&prompt, &token, survey.WithValidator(survey.Required))
		handleErr(err)

		handleErr(auth.SetToken(token))
		fmt.Printf("%s token stored in the system keyring\n", icon.Get(icon.Success))
	},
}

// authLogoutCmd removes the stored API token from the system keyring.
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored content service API token",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())
		fmt.Printf("%s token removed\n", icon.Get(icon.Success))
	},
}

// authStatusCmd reports whether a token is currently stored.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a content service API token is stored",
	Run: func(cmd *cobra.Command, args []string) {
		token, err := auth.GetToken()
		if err != nil || token == "" {
			fmt.Printf("%s no token stored, run `%s auth login`\n", icon.Get(icon.Fail), rootCmd.Use)
			return
		}

		fmt.Printf("%s token present for user %s\n", icon.Get(icon.Success), viper.GetString(key.ContentUserID))
	},
}
