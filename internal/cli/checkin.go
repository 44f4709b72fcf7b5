package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropanchor/anchor-go/internal/domain"
)

func init() {
	cmd := &cobra.Command{
		Use:   "checkin [message]",
		Short: "Drop anchor at a venue",
		Long:  "Publish an address record and a check-in referencing it. The optional message becomes the check-in text and leads the announcement post.",
		Run:   runCheckin,
	}

	cmd.Flags().String("name", "", "Venue name (required)")
	cmd.Flags().String("street", "", "Street address")
	cmd.Flags().String("locality", "", "City or town")
	cmd.Flags().String("region", "", "State or region")
	cmd.Flags().String("country", "", "Country code")
	cmd.Flags().String("postal", "", "Postal code")
	cmd.Flags().String("lat", "", "Latitude")
	cmd.Flags().String("lon", "", "Longitude")
	cmd.Flags().String("category", "", "Venue category, e.g. cafe")
	cmd.Flags().String("group", "", "Category group, e.g. food_and_drink")
	cmd.Flags().String("icon", "", "Category icon, e.g. ☕")
	cmd.Flags().String("url", "", "Venue web page, linked from the post")
	cmd.Flags().Bool("no-post", false, "Skip the announcement post")

	cmd.MarkFlagRequired("name")

	RootCmd.AddCommand(cmd)
}

func runCheckin(cmd *cobra.Command, args []string) {
	a := newApp()

	name, _ := cmd.Flags().GetString("name")
	lat, _ := cmd.Flags().GetString("lat")
	lon, _ := cmd.Flags().GetString("lon")
	if (lat == "") != (lon == "") {
		exitErr("checkin", fmt.Errorf("--lat and --lon must be given together"))
	}

	place := domain.Place{
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
	}
	place.Street, _ = cmd.Flags().GetString("street")
	place.Locality, _ = cmd.Flags().GetString("locality")
	place.Region, _ = cmd.Flags().GetString("region")
	place.Country, _ = cmd.Flags().GetString("country")
	place.PostalCode, _ = cmd.Flags().GetString("postal")
	place.Category, _ = cmd.Flags().GetString("category")
	place.CategoryGroup, _ = cmd.Flags().GetString("group")
	place.CategoryIcon, _ = cmd.Flags().GetString("icon")
	place.URL, _ = cmd.Flags().GetString("url")

	message := strings.Join(args, " ")

	j := a.openJournal()
	defer j.Close()

	noPost, _ := cmd.Flags().GetBool("no-post")
	uc := a.checkins(j, !noPost)

	result, err := uc.CreateCheckin(cmd.Context(), place, message)
	if err != nil {
		exitErr("checkin", err)
	}

	fmt.Printf("checked in at %s\n", name)
	fmt.Printf("  %s\n", result.Checkin.URI)
	if result.Post != nil {
		fmt.Printf("  posted: %s\n", result.Post.URI)
	}
	if result.PostErr != nil {
		fmt.Printf("  post failed (check-in stands): %v\n", result.PostErr)
	}
}
