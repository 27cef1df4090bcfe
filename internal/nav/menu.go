package nav

// Menu is the static Lumina sidebar tree. Role filtering happens at
// derivation time through the route table, so a section only appears when
// the role may actually enter it.
func Menu() []Node {
	return []Node{
		{Name: "Discover", Path: "/", Children: []Node{
			{Name: "Venues", Path: "/venues"},
			{Name: "Events", Path: "/events"},
			{Name: "Search", Path: "/search"},
		}},
		{Name: "Dashboard", Path: "/dashboard", Children: []Node{
			{Name: "My Bookings", Path: "/dashboard/bookings"},
			{Name: "My Reviews", Path: "/dashboard/reviews"},
			{Name: "Profile", Path: "/dashboard/profile"},
		}},
		{Name: "Owner", Path: "/owner", Children: []Node{
			{Name: "My Venues", Path: "/owner/venues"},
			{Name: "Bookings", Path: "/owner/bookings"},
		}},
		{Name: "Organizer", Path: "/organizer", Children: []Node{
			{Name: "My Events", Path: "/organizer/events"},
		}},
		{Name: "Admin", Path: "/admin", Children: []Node{
			{Name: "Users", Path: "/admin/users"},
			{Name: "Venues", Path: "/admin/venues"},
			{Name: "Settings", Path: "/admin/settings", Children: []Node{
				{Name: "General", Path: "/admin/settings/general"},
				{Name: "Security", Path: "/admin/settings/security"},
			}},
		}},
	}
}
